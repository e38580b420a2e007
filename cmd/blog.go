package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/captiveadvisors/directory/internal/model"
)

var (
	blogTopic    string
	blogCategory string
	blogPublish  bool
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Blog content tooling",
}

var blogGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one blog post with the language model",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Anthropic.Key == "" {
			return eris.New("anthropic api key is required (DIRECTORY_ANTHROPIC_KEY)")
		}
		category := model.BlogCategory(blogCategory)
		if !model.ValidBlogCategory(category) {
			return eris.Errorf("unknown category: %s", blogCategory)
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		article, err := initRewriter().GenerateArticle(ctx, blogTopic, category)
		if err != nil {
			return err
		}

		post := &model.BlogPost{
			Title:     article.Title,
			Slug:      model.Slugify(article.Title),
			Excerpt:   article.Excerpt,
			Content:   article.Body,
			Category:  category,
			ReadTime:  readTime(article.Body),
			Published: blogPublish,
		}
		if err := st.CreateBlogPost(ctx, post); err != nil {
			return err
		}

		zap.L().Info("blog post created",
			zap.String("slug", post.Slug),
			zap.Bool("published", post.Published),
		)
		fmt.Printf("created %s (%s)\n", post.Slug, post.ReadTime)
		return nil
	},
}

// readTime estimates reading time at 200 words per minute.
func readTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func init() {
	blogGenerateCmd.Flags().StringVar(&blogTopic, "topic", "", "topic to write about")
	blogGenerateCmd.Flags().StringVar(&blogCategory, "category", string(model.CategoryTaxStrategy), "post category")
	blogGenerateCmd.Flags().BoolVar(&blogPublish, "publish", false, "publish immediately instead of saving a draft")
	blogGenerateCmd.MarkFlagRequired("topic")
	blogCmd.AddCommand(blogGenerateCmd)
	rootCmd.AddCommand(blogCmd)
}
