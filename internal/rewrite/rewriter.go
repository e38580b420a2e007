// Package rewrite turns scraped advisor profiles into clean directory bios
// using the Anthropic API, with a deterministic fallback when the model is
// unreachable.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/resilience"
	"github.com/captiveadvisors/directory/pkg/anthropic"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	bioMaxTokens     = 1024
	articleMaxTokens = 4096
	retryAttempts    = 3
	retryUnit        = 2 * time.Second
)

const bioSystemPrompt = `You rewrite scraped financial advisor profiles into concise, professional directory bios. You respond with a single JSON object and nothing else: {"bio": string, "specialties": [string, ...]}. The bio is 2-4 sentences, third person, factual, with no marketing superlatives. Specialties are short noun phrases. Never invent credentials or employers that are not in the input.`

// fallbackSpecialties is used when the model cannot be reached and the
// scraped profile carries none of its own.
var fallbackSpecialties = []string{"Tax Planning", "Wealth Management", "Financial Planning"}

// Result is a rewritten advisor profile.
type Result struct {
	Bio         string   `json:"bio"`
	Specialties []string `json:"specialties"`
	// Fallback marks results produced without the model.
	Fallback bool `json:"-"`
}

// Rewriter rewrites advisor bios and drafts blog articles.
type Rewriter struct {
	client  anthropic.Client
	model   string
	backoff time.Duration
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithBackoff overrides the retry backoff unit.
func WithBackoff(d time.Duration) Option {
	return func(r *Rewriter) {
		r.backoff = d
	}
}

// New creates a Rewriter. If model is empty, a default is used.
func New(client anthropic.Client, model string, opts ...Option) *Rewriter {
	if model == "" {
		model = defaultModel
	}
	r := &Rewriter{client: client, model: model, backoff: retryUnit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RewriteBio rewrites a scraped advisor into a directory-ready bio plus a
// cleaned specialty list. It retries transient failures with linear backoff
// and falls back to a deterministic template so ingestion never stalls on
// the model.
func (r *Rewriter) RewriteBio(ctx context.Context, adv model.ScrapedAdvisor) Result {
	cfg := resilience.LinearRetryConfig(retryAttempts, r.backoff)
	cfg.OnRetry = resilience.RetryLogger("anthropic", "rewrite bio")

	return resilience.DoValFallback(ctx, cfg, func(ctx context.Context) (Result, error) {
		return r.rewriteOnce(ctx, adv)
	}, func() Result {
		return FallbackResult(adv)
	})
}

func (r *Rewriter) rewriteOnce(ctx context.Context, adv model.ScrapedAdvisor) (Result, error) {
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: bioMaxTokens,
		System:    bioSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: bioPrompt(adv)},
		},
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "rewrite: create message")
	}

	result, err := parseResult(resp.Text())
	if err != nil {
		return Result{}, err
	}
	if len(result.Specialties) == 0 {
		result.Specialties = adv.Specialties
	}
	return result, nil
}

func bioPrompt(adv model.ScrapedAdvisor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", adv.Name)
	if adv.FirmName != "" {
		fmt.Fprintf(&b, "Firm: %s\n", adv.FirmName)
	}
	fmt.Fprintf(&b, "Designation: %s\n", adv.Designation)
	if adv.City != "" || adv.State != "" {
		fmt.Fprintf(&b, "Location: %s, %s\n", adv.City, adv.State)
	}
	if len(adv.Specialties) > 0 {
		fmt.Fprintf(&b, "Specialties: %s\n", strings.Join(adv.Specialties, ", "))
	}
	if adv.Bio != "" {
		fmt.Fprintf(&b, "Scraped bio:\n%s\n", adv.Bio)
	}
	return b.String()
}

// parseResult extracts the JSON object from a model response, tolerating
// markdown code fences and surrounding prose.
func parseResult(text string) (Result, error) {
	raw := extractJSON(text)
	if raw == "" {
		return Result{}, eris.Errorf("rewrite: no JSON object in response: %q", truncate(text, 120))
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, eris.Wrap(err, "rewrite: unmarshal response")
	}
	if strings.TrimSpace(result.Bio) == "" {
		return Result{}, eris.New("rewrite: response missing bio")
	}
	result.Bio = strings.TrimSpace(result.Bio)
	return result, nil
}

// extractJSON returns the first balanced {...} object in text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FallbackResult builds a deterministic bio from scraped fields alone. The
// advisor's name and designation appear verbatim so the page is still
// accurate without the model.
func FallbackResult(adv model.ScrapedAdvisor) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s", adv.Name, adv.Designation)
	if adv.FirmName != "" {
		fmt.Fprintf(&b, " at %s", adv.FirmName)
	}
	if adv.City != "" && adv.State != "" {
		fmt.Fprintf(&b, " in %s, %s", adv.City, adv.State)
	}
	b.WriteString(".")

	specialties := adv.Specialties
	if len(specialties) == 0 {
		specialties = append([]string(nil), fallbackSpecialties...)
	}
	fmt.Fprintf(&b, " %s works with business owners and individuals on %s.",
		firstName(adv.Name), strings.Join(specialties, ", "))

	return Result{Bio: b.String(), Specialties: specialties, Fallback: true}
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
