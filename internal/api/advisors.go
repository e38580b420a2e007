package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

func (s *Server) advisorRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleListAdvisors)
	r.Get("/{slug}", s.handleGetAdvisor)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/", s.handleCreateAdvisor)
		r.Put("/{id}", s.handleUpdateAdvisor)
		r.Delete("/{id}", s.handleDeleteAdvisor)
	})
	return r
}

// parsePage reads limit/offset query params, clamping limit to 100.
func parsePage(r *http.Request) (limit, offset int) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func (s *Server) handleListAdvisors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AdvisorFilter{
		Query:       q.Get("q"),
		State:       q.Get("state"),
		City:        q.Get("city"),
		Specialty:   q.Get("specialty"),
		Designation: q.Get("designation"),
	}
	if raw := q.Get("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid verified parameter")
			return
		}
		filter.Verified = &v
	}
	filter.Limit, filter.Offset = parsePage(r)

	advisors, err := s.store.ListAdvisors(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing advisors failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"advisors": advisors, "count": len(advisors)})
}

func (s *Server) handleGetAdvisor(w http.ResponseWriter, r *http.Request) {
	adv, err := s.store.GetAdvisorBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.respondStoreError(w, err, "advisor")
		return
	}
	writeJSON(w, http.StatusOK, adv)
}

func (s *Server) handleCreateAdvisor(w http.ResponseWriter, r *http.Request) {
	var adv model.Advisor
	if err := decodeJSON(r, &adv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if adv.Name == "" || adv.City == "" || adv.State == "" {
		writeError(w, http.StatusBadRequest, "name, city and state are required")
		return
	}
	if adv.Slug == "" {
		adv.Slug = model.AdvisorSlug(adv.Name, adv.City, firstOrEmpty(adv.Specialties))
	}
	if err := s.store.CreateAdvisor(r.Context(), &adv); err != nil {
		s.respondStoreError(w, err, "advisor")
		return
	}
	writeJSON(w, http.StatusCreated, adv)
}

func (s *Server) handleUpdateAdvisor(w http.ResponseWriter, r *http.Request) {
	var adv model.Advisor
	if err := decodeJSON(r, &adv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	adv.ID = chi.URLParam(r, "id")
	if err := s.store.UpdateAdvisor(r.Context(), &adv); err != nil {
		s.respondStoreError(w, err, "advisor")
		return
	}
	writeJSON(w, http.StatusOK, adv)
}

func (s *Server) handleDeleteAdvisor(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAdvisor(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStoreError(w, err, "advisor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
