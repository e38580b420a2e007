package model

import "time"

// BlogCategory is the editorial category of a post.
type BlogCategory string

const (
	CategoryTaxStrategy    BlogCategory = "tax-strategy"
	CategoryCaptive        BlogCategory = "captive-insurance"
	CategoryWealthPlanning BlogCategory = "wealth-planning"
	CategoryBusinessOwners BlogCategory = "business-owners"
)

// ValidBlogCategory reports whether c is a known category.
func ValidBlogCategory(c BlogCategory) bool {
	switch c {
	case CategoryTaxStrategy, CategoryCaptive, CategoryWealthPlanning, CategoryBusinessOwners:
		return true
	}
	return false
}

// BlogPost is an article, authored either by the blog generation command or
// through the admin endpoint. Unpublished posts are hidden from the public
// listing and the sitemap.
type BlogPost struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Slug      string       `json:"slug"`
	Excerpt   string       `json:"excerpt"`
	Content   string       `json:"content"`
	Category  BlogCategory `json:"category"`
	ReadTime  string       `json:"read_time"`
	Published bool         `json:"published"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
