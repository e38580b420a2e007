package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/captiveadvisors/directory/internal/store"
)

func (s *Server) directoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{specialty}", s.handleDirectoryHub)
	r.Get("/{specialty}/{city}", s.handleGoldenPage)
	return r
}

var titleCaser = cases.Title(language.English)

// deslug turns a URL path segment back into its display form, e.g.
// "tax-planning" into "Tax Planning".
func deslug(segment string) string {
	return titleCaser.String(strings.ReplaceAll(segment, "-", " "))
}

// handleDirectoryHub serves a specialty hub: every advisor carrying the
// specialty, across all cities.
func (s *Server) handleDirectoryHub(w http.ResponseWriter, r *http.Request) {
	specialty := deslug(chi.URLParam(r, "specialty"))
	filter := store.AdvisorFilter{Specialty: specialty}
	filter.Limit, filter.Offset = parsePage(r)

	advisors, err := s.store.ListAdvisors(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing advisors failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specialty": specialty,
		"advisors":  advisors,
		"count":     len(advisors),
	})
}

// handleGoldenPage serves the two-dimensional specialty-by-city view.
func (s *Server) handleGoldenPage(w http.ResponseWriter, r *http.Request) {
	specialty := deslug(chi.URLParam(r, "specialty"))
	city := deslug(chi.URLParam(r, "city"))
	filter := store.AdvisorFilter{Specialty: specialty, City: city}
	filter.Limit, filter.Offset = parsePage(r)

	advisors, err := s.store.ListAdvisors(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing advisors failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specialty": specialty,
		"city":      city,
		"advisors":  advisors,
		"count":     len(advisors),
	})
}
