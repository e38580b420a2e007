package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captiveadvisors/directory/internal/config"
	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	srv := NewServer(st, config.ServerConfig{
		BaseURL:       "https://captiveadvisors.example.com",
		AdminUser:     "admin",
		AdminPassword: "hunter2",
		SessionSecret: "test-secret",
	})
	return srv, st
}

func seedAdvisor(t *testing.T, st *store.SQLiteStore, slug, city, state string, specialties ...string) *model.Advisor {
	t.Helper()
	a := &model.Advisor{
		Slug:        slug,
		Name:        "Jane Doe",
		FirmName:    "Peachtree Accounting Group",
		Designation: model.DesignationCPA,
		City:        city,
		State:       state,
		ZipCode:     "30096",
		Bio:         "Jane Doe is a CPA.",
		Specialties: specialties,
	}
	require.NoError(t, st.CreateAdvisor(context.Background(), a))
	return a
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// adminCookie logs in through the real endpoint and returns the session
// cookie it set.
func adminCookie(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer(t)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/advisors", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/leads", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionVerification(t *testing.T) {
	now := time.Now()
	token := signSession("secret", now)
	assert.True(t, verifySession("secret", token, now))
	assert.False(t, verifySession("other", token, now), "wrong secret")
	assert.False(t, verifySession("secret", token+"x", now), "tampered signature")
	assert.False(t, verifySession("secret", token, now.Add(sessionTTL+time.Minute)), "expired")
	assert.False(t, verifySession("secret", "garbage", now))
}

func TestListAdvisorsWithFilters(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	seedAdvisor(t, st, "jane-doe-duluth-tax-planning", "Duluth", "GA", "Tax Planning")
	b := seedAdvisor(t, st, "jane-doe-austin-captive-insurance", "Austin", "TX", "Captive Insurance")
	b.Name = "John Roe"
	require.NoError(t, st.UpdateAdvisor(context.Background(), b))

	rec := doJSON(t, r, http.MethodGet, "/api/advisors?state=GA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Advisors []model.Advisor `json:"advisors"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "GA", resp.Advisors[0].State)

	rec = doJSON(t, r, http.MethodGet, "/api/advisors?q=Roe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp.Advisors = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "John Roe", resp.Advisors[0].Name)

	rec = doJSON(t, r, http.MethodGet, "/api/advisors?verified=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAdvisorBySlug(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	seedAdvisor(t, st, "jane-doe-duluth-tax-planning", "Duluth", "GA", "Tax Planning")

	rec := doJSON(t, r, http.MethodGet, "/api/advisors/jane-doe-duluth-tax-planning", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/advisors/no-such-advisor", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAdvisorAdmin(t *testing.T) {
	srv, _ := newTestServer(t)
	r := srv.Router()
	cookie := adminCookie(t, r)

	body := map[string]any{
		"name":        "John Roe",
		"city":        "Atlanta",
		"state":       "GA",
		"designation": model.DesignationWealth,
		"specialties": []string{"Wealth Management"},
		"bio":         "John Roe advises business owners.",
	}
	rec := doJSON(t, r, http.MethodPost, "/api/advisors", body, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Advisor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "john-roe-atlanta-wealth-management", created.Slug)

	// same payload again collides on the derived slug
	rec = doJSON(t, r, http.MethodPost, "/api/advisors", body, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDirectoryHubAndGoldenPage(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	seedAdvisor(t, st, "jane-doe-duluth-tax-planning", "Duluth", "GA", "Tax Planning")
	seedAdvisor(t, st, "jane-doe-austin-tax-planning", "Austin", "TX", "Tax Planning")

	rec := doJSON(t, r, http.MethodGet, "/api/directory/tax-planning", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hub struct {
		Specialty string `json:"specialty"`
		Count     int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hub))
	assert.Equal(t, "Tax Planning", hub.Specialty)
	assert.Equal(t, 2, hub.Count)

	rec = doJSON(t, r, http.MethodGet, "/api/directory/tax-planning/duluth", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var golden struct {
		City  string `json:"city"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &golden))
	assert.Equal(t, "Duluth", golden.City)
	assert.Equal(t, 1, golden.Count)
}

func TestCreateLeadValidation(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	adv := seedAdvisor(t, st, "jane-doe-duluth-tax-planning", "Duluth", "GA", "Tax Planning")

	// missing email
	rec := doJSON(t, r, http.MethodPost, "/api/leads", map[string]any{
		"advisor_id":  adv.ID,
		"name":        "Prospect",
		"source_type": "profile",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// bad source type
	rec = doJSON(t, r, http.MethodPost, "/api/leads", map[string]any{
		"advisor_id":  adv.ID,
		"name":        "Prospect",
		"email":       "p@example.com",
		"source_type": "billboard",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown advisor
	rec = doJSON(t, r, http.MethodPost, "/api/leads", map[string]any{
		"advisor_id":  "missing",
		"name":        "Prospect",
		"email":       "p@example.com",
		"source_type": "profile",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// valid
	rec = doJSON(t, r, http.MethodPost, "/api/leads", map[string]any{
		"advisor_id":       adv.ID,
		"name":             "Prospect",
		"email":            "p@example.com",
		"message":          "Interested in a captive.",
		"captive_interest": true,
		"source_type":      "profile",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	cookie := adminCookie(t, r)
	rec = doJSON(t, r, http.MethodGet, "/api/leads?unsynced=true", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestBlogPublicHidesDrafts(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	ctx := context.Background()

	require.NoError(t, st.CreateBlogPost(ctx, &model.BlogPost{
		Title: "Captive Insurance Basics", Slug: "captive-insurance-basics",
		Content: "body", Category: model.CategoryCaptive, Published: true,
	}))
	require.NoError(t, st.CreateBlogPost(ctx, &model.BlogPost{
		Title: "Draft Post", Slug: "draft-post",
		Content: "body", Category: model.CategoryTaxStrategy,
	}))

	rec := doJSON(t, r, http.MethodGet, "/api/blog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestCreateBlogPostAdmin(t *testing.T) {
	srv, _ := newTestServer(t)
	r := srv.Router()
	cookie := adminCookie(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/blog", map[string]any{
		"title":    "Why Business Owners Consider Captives",
		"content":  "Long form content.",
		"category": "captive-insurance",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.BlogPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "why-business-owners-consider-captives", created.Slug)

	rec = doJSON(t, r, http.MethodPost, "/api/blog", map[string]any{
		"title":    "Bad Category",
		"content":  "x",
		"category": "astrology",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
