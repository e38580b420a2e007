package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

func (s *Server) blogRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleListBlogPosts)
	r.Get("/{slug}", s.handleGetBlogPost)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/", s.handleCreateBlogPost)
		r.Put("/{id}", s.handleUpdateBlogPost)
		r.Delete("/{id}", s.handleDeleteBlogPost)
	})
	return r
}

// handleListBlogPosts lists published posts only. Drafts are admin-side.
func (s *Server) handleListBlogPosts(w http.ResponseWriter, r *http.Request) {
	filter := store.BlogFilter{
		Category:      model.BlogCategory(r.URL.Query().Get("category")),
		PublishedOnly: true,
	}
	filter.Limit, filter.Offset = parsePage(r)

	posts, err := s.store.ListBlogPosts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing posts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "count": len(posts)})
}

func (s *Server) handleGetBlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.GetBlogPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.respondStoreError(w, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreateBlogPost(w http.ResponseWriter, r *http.Request) {
	var post model.BlogPost
	if err := decodeJSON(r, &post); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if post.Title == "" || post.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if !model.ValidBlogCategory(post.Category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if post.Slug == "" {
		post.Slug = model.Slugify(post.Title)
	}
	if err := s.store.CreateBlogPost(r.Context(), &post); err != nil {
		s.respondStoreError(w, err, "post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdateBlogPost(w http.ResponseWriter, r *http.Request) {
	var post model.BlogPost
	if err := decodeJSON(r, &post); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	post.ID = chi.URLParam(r, "id")
	if err := s.store.UpdateBlogPost(r.Context(), &post); err != nil {
		s.respondStoreError(w, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBlogPost(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStoreError(w, err, "post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
