package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

func (s *Server) leadRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handleCreateLead)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/", s.handleListLeads)
	})
	return r
}

type leadRequest struct {
	AdvisorID       string `json:"advisor_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Message         string `json:"message"`
	RevenueBracket  string `json:"revenue_bracket"`
	CaptiveInterest bool   `json:"captive_interest"`
	HasCPA          bool   `json:"has_cpa"`
	SourcePage      string `json:"source_page"`
	SourceType      string `json:"source_type"`
}

func (req leadRequest) validate() string {
	switch {
	case req.AdvisorID == "":
		return "advisor_id is required"
	case req.Name == "":
		return "name is required"
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return "a valid email is required"
	case !model.ValidLeadSourceType(model.LeadSourceType(req.SourceType)):
		return "unknown source_type"
	}
	return ""
}

// handleCreateLead is the public lead-capture endpoint. Bodies that fail
// validation get a 400 with the reason; an unknown advisor id gets a 404.
func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if _, err := s.store.GetAdvisor(r.Context(), req.AdvisorID); err != nil {
		s.respondStoreError(w, err, "advisor")
		return
	}

	lead := model.Lead{
		AdvisorID:       req.AdvisorID,
		Name:            req.Name,
		Email:           req.Email,
		Message:         req.Message,
		RevenueBracket:  req.RevenueBracket,
		CaptiveInterest: req.CaptiveInterest,
		HasCPA:          req.HasCPA,
		SourcePage:      req.SourcePage,
		SourceType:      model.LeadSourceType(req.SourceType),
	}
	if err := s.store.CreateLead(r.Context(), &lead); err != nil {
		s.respondStoreError(w, err, "lead")
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.LeadFilter{
		SourceType: model.LeadSourceType(q.Get("source_type")),
		Unsynced:   q.Get("unsynced") == "true",
	}
	filter.Limit, filter.Offset = parsePage(r)

	leads, err := s.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing leads failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}
