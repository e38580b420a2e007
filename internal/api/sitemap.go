package api

import (
	"encoding/xml"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

const sitemapPageSize = 500

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// handleSitemap renders the full sitemap: advisor profiles, city hubs,
// specialty hubs, golden pages and published blog posts.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.add(sitemapURL{Loc: base + "/", ChangeFreq: "daily"})

	cityHubs := map[string]bool{}
	specialtyHubs := map[string]bool{}
	goldenPages := map[string]bool{}

	for offset := 0; ; offset += sitemapPageSize {
		advisors, err := s.store.ListAdvisors(r.Context(), store.AdvisorFilter{
			Limit:  sitemapPageSize,
			Offset: offset,
		})
		if err != nil {
			zap.L().Error("api: sitemap advisor page", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "sitemap generation failed")
			return
		}
		for _, a := range advisors {
			set.add(sitemapURL{
				Loc:     base + "/advisors/" + a.Slug,
				LastMod: a.UpdatedAt.Format(time.DateOnly),
			})
			citySlug := model.Slugify(a.City)
			if citySlug != "" {
				cityHubs[citySlug] = true
			}
			for _, sp := range a.Specialties {
				spSlug := model.Slugify(sp)
				if spSlug == "" {
					continue
				}
				specialtyHubs[spSlug] = true
				if citySlug != "" {
					goldenPages[spSlug+"/"+citySlug] = true
				}
			}
		}
		if len(advisors) < sitemapPageSize {
			break
		}
	}

	for _, slug := range sortedKeys(cityHubs) {
		set.add(sitemapURL{Loc: base + "/cities/" + slug, ChangeFreq: "weekly"})
	}
	for _, slug := range sortedKeys(specialtyHubs) {
		set.add(sitemapURL{Loc: base + "/directory/" + slug, ChangeFreq: "weekly"})
	}
	for _, path := range sortedKeys(goldenPages) {
		set.add(sitemapURL{Loc: base + "/directory/" + path, ChangeFreq: "weekly"})
	}

	posts, err := s.store.ListBlogPosts(r.Context(), store.BlogFilter{
		PublishedOnly: true,
		Limit:         sitemapPageSize,
	})
	if err != nil {
		zap.L().Error("api: sitemap blog page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sitemap generation failed")
		return
	}
	for _, p := range posts {
		set.add(sitemapURL{
			Loc:     base + "/blog/" + p.Slug,
			LastMod: p.UpdatedAt.Format(time.DateOnly),
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		zap.L().Warn("api: encode sitemap", zap.Error(err))
	}
}

func (u *urlSet) add(entry sitemapURL) {
	u.URLs = append(u.URLs, entry)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
