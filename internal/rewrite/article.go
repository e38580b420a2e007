package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/resilience"
	"github.com/captiveadvisors/directory/pkg/anthropic"
)

const articleSystemPrompt = `You write educational blog articles for a directory of CPAs and wealth advisors who serve business owners. You respond with a single JSON object and nothing else: {"title": string, "excerpt": string, "body": string}. The body is markdown, 600-1000 words, practical and specific, with section headings. The excerpt is one or two sentences. Never give individualized legal or tax advice; frame content as general education.`

// Article is a generated blog draft.
type Article struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
}

// GenerateArticle drafts a blog article for the given topic and category.
// Failures retry on the same linear schedule as bio rewriting, but there is
// no fallback; a draft either comes from the model or the command fails.
func (r *Rewriter) GenerateArticle(ctx context.Context, topic string, category model.BlogCategory) (*Article, error) {
	cfg := resilience.LinearRetryConfig(retryAttempts, r.backoff)
	cfg.OnRetry = resilience.RetryLogger("anthropic", "generate article")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*Article, error) {
		return r.generateOnce(ctx, topic, category)
	})
}

func (r *Rewriter) generateOnce(ctx context.Context, topic string, category model.BlogCategory) (*Article, error) {
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: articleMaxTokens,
		System:    articleSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Category: %s\nTopic: %s\n", category, topic)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "rewrite: generate article")
	}

	raw := extractJSON(resp.Text())
	if raw == "" {
		return nil, eris.New("rewrite: no JSON object in article response")
	}

	var article Article
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		return nil, eris.Wrap(err, "rewrite: unmarshal article")
	}
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.Body) == "" {
		return nil, eris.New("rewrite: article response missing title or body")
	}
	return &article, nil
}
