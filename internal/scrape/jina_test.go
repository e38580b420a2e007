package scrape

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captiveadvisors/directory/internal/resilience"
	"github.com/captiveadvisors/directory/pkg/jina"
)

type stubJina struct {
	resp *jina.ReadResponse
	err  error
}

func (s *stubJina) Read(ctx context.Context, targetURL string) (*jina.ReadResponse, error) {
	return s.resp, s.err
}

func TestJinaAdapterScrape(t *testing.T) {
	body := strings.Repeat("advisor listing content ", 20)
	adapter := NewJinaAdapter(&stubJina{resp: &jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{Title: "Directory", URL: "https://example.com", Content: body},
	}})

	page, err := adapter.Scrape(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Directory", page.Title)
	assert.Equal(t, body, page.Markdown)
}

func TestJinaAdapterShortContent(t *testing.T) {
	adapter := NewJinaAdapter(&stubJina{resp: &jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{Content: "nothing here"},
	}})

	_, err := adapter.Scrape(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs fallback")
}

func TestJinaAdapterStatusClassification(t *testing.T) {
	adapter := NewJinaAdapter(&stubJina{err: &jina.APIError{StatusCode: 503, Body: "upstream down"}})
	_, err := adapter.Scrape(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err), "503 should be retryable")

	adapter = NewJinaAdapter(&stubJina{err: &jina.APIError{StatusCode: 404, Body: "gone"}})
	_, err = adapter.Scrape(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err), "404 should not be retryable")
}

func TestNeedsFallback(t *testing.T) {
	long := strings.Repeat("real advisor content ", 30)

	tests := []struct {
		name string
		resp *jina.ReadResponse
		want bool
	}{
		{name: "nil response", resp: nil, want: true},
		{name: "error code", resp: &jina.ReadResponse{Code: 451, Data: jina.ReadData{Content: long}}, want: true},
		{name: "empty content", resp: &jina.ReadResponse{Code: 200}, want: true},
		{
			name: "challenge page",
			resp: &jina.ReadResponse{Code: 200, Data: jina.ReadData{Content: "Just a moment... Checking your browser before accessing the site. This process is automatic and should only take a few seconds before you are redirected."}},
			want: true,
		},
		{name: "good content", resp: &jina.ReadResponse{Code: 200, Data: jina.ReadData{Content: long}}, want: false},
		{name: "zero code treated as ok", resp: &jina.ReadResponse{Data: jina.ReadData{Content: long}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsFallback(tt.resp))
		})
	}
}
