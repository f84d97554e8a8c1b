package domain

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format stored in a post's metadata block.
const DateLayout = "2006-01-02"

var (
	slugSeparatorRegex = regexp.MustCompile(`[^a-z0-9]+`)
	validSlugRegex     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Post represents a blog post
// A post is a single markdown document with a metadata block. Its slug is derived from the
// title when the post is created and never changes afterwards.
type Post struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Content  string `json:"content"`

	// SHA is the remote revision token. It is only set by the remote store.
	SHA string `json:"-"`
}

// Meta returns the post without its body.
func (p *Post) Meta() PostMeta {
	return PostMeta{
		Slug:     p.Slug,
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Date:     p.Date,
		Author:   p.Author,
		Category: p.Category,
	}
}

// PostMeta is the listing view of a post.
type PostMeta struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// PostInput carries the caller-supplied fields of a create or update.
// Date and Author are optional overrides; when empty the store keeps the stored value
// (update) or fills in a default (create).
type PostInput struct {
	Title    string
	Excerpt  string
	Category string
	Content  string
	Date     string
	Author   string
}

// PostStore is the document CRUD contract shared by every storage backend.
type PostStore interface {
	// List returns the metadata of every post, most recent first.
	List(ctx context.Context) ([]PostMeta, error)
	// Get returns the full post or ErrNotFound.
	Get(ctx context.Context, slug string) (*Post, error)
	// Create stores a new post and returns its slug.
	Create(ctx context.Context, in PostInput) (string, error)
	// Update rewrites an existing post in place. The slug never changes.
	Update(ctx context.Context, slug string, in PostInput) error
	// Delete removes the post permanently.
	Delete(ctx context.Context, slug string) error
	// Name identifies the backend in logs and health output.
	Name() string
}

// Slugify derives a URL-safe slug from a title.
// Example: "Hello, World!" -> "hello-world"
func Slugify(title string) string {
	slug := slugSeparatorRegex.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// ValidSlug reports whether s could have been produced by Slugify.
func ValidSlug(s string) bool {
	return validSlugRegex.MatchString(s)
}

// SortByDateDesc orders posts most recent first. Posts sharing a date keep their
// relative order; dates that cannot be parsed sort last.
func SortByDateDesc(posts []PostMeta) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, okI := parseDate(posts[i].Date)
		tj, okJ := parseDate(posts[j].Date)
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}

func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Today returns the current UTC date in DateLayout.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}
