package persistence

import (
	"github.com/dfryer1193/sitepress/blog/document"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/rs/zerolog/log"
)

// listedSlug returns the slug of a directory entry that should appear in a listing.
// Documents whose name is not a valid slug are skipped, since Get would report them as not found.
func listedSlug(name string) (string, bool) {
	slug, ok := document.SlugFromFilename(name)
	if !ok {
		return "", false
	}
	if !domain.ValidSlug(slug) {
		log.Warn().Str("file", name).Msg("Skipping post document with an invalid slug")
		return "", false
	}
	return slug, true
}

// newPost builds the document for a freshly created post.
// Date defaults to today and author to the site owner.
func newPost(slug string, in domain.PostInput, defaultAuthor string) *domain.Post {
	date := in.Date
	if date == "" {
		date = domain.Today()
	}
	author := in.Author
	if author == "" {
		author = defaultAuthor
	}

	return &domain.Post{
		Slug:     slug,
		Title:    in.Title,
		Excerpt:  in.Excerpt,
		Date:     date,
		Author:   author,
		Category: in.Category,
		Content:  in.Content,
	}
}

// mergePost applies an update on top of the stored post.
// Date and author are write-once: the stored values win unless the input overrides them.
func mergePost(existing *domain.Post, in domain.PostInput, defaultAuthor string) *domain.Post {
	date := in.Date
	if date == "" {
		date = existing.Date
	}
	if date == "" {
		date = domain.Today()
	}

	author := in.Author
	if author == "" {
		author = existing.Author
	}
	if author == "" {
		author = defaultAuthor
	}

	return &domain.Post{
		Slug:     existing.Slug,
		Title:    in.Title,
		Excerpt:  in.Excerpt,
		Date:     date,
		Author:   author,
		Category: in.Category,
		Content:  in.Content,
		SHA:      existing.SHA,
	}
}
