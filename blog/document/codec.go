// Package document encodes posts to and from the on-disk format shared by every store:
// a metadata block delimited by marker lines, a blank line, then the markdown body.
package document

import (
	"regexp"
	"strings"

	"github.com/dfryer1193/sitepress/blog/domain"
)

const (
	// Marker opens and closes the metadata block.
	Marker = "---"

	// Extension is the file suffix of a post document.
	Extension = ".mdx"
)

// Metadata keys in the order they are written.
const (
	KeyTitle    = "title"
	KeyExcerpt  = "excerpt"
	KeyDate     = "date"
	KeyAuthor   = "author"
	KeyCategory = "category"
)

var (
	fieldOrder = []string{KeyTitle, KeyExcerpt, KeyDate, KeyAuthor, KeyCategory}
	fieldRegex = regexp.MustCompile(`^(\w+):\s*"?([^"]*)"?$`)
)

// Encode serializes the post's metadata and body.
func Encode(p *domain.Post) string {
	values := map[string]string{
		KeyTitle:    p.Title,
		KeyExcerpt:  p.Excerpt,
		KeyDate:     p.Date,
		KeyAuthor:   p.Author,
		KeyCategory: p.Category,
	}

	var b strings.Builder
	b.WriteString(Marker + "\n")
	for _, key := range fieldOrder {
		b.WriteString(key + `: "` + values[key] + `"` + "\n")
	}
	b.WriteString(Marker + "\n\n")
	b.WriteString(p.Content)

	return b.String()
}

// Decode splits a document into its metadata pairs and trimmed body.
// Malformed metadata lines are skipped. A document without a closing marker is
// treated as all body.
func Decode(text string) (map[string]string, string) {
	lines := strings.Split(text, "\n")
	meta := make(map[string]string)
	inBlock := false
	bodyStart := 0

	for i, line := range lines {
		if strings.TrimSpace(line) == Marker {
			if !inBlock {
				inBlock = true
				continue
			}
			bodyStart = i + 1
			break
		}

		if !inBlock {
			continue
		}

		// Tolerate CRLF documents edited on Windows
		match := fieldRegex.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}
		meta[match[1]] = match[2]
	}

	body := strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return meta, body
}

// DecodePost decodes a full post. Missing fields are left empty.
func DecodePost(slug string, text string) *domain.Post {
	meta, body := Decode(text)
	return &domain.Post{
		Slug:     slug,
		Title:    meta[KeyTitle],
		Excerpt:  meta[KeyExcerpt],
		Date:     meta[KeyDate],
		Author:   meta[KeyAuthor],
		Category: meta[KeyCategory],
		Content:  body,
	}
}

// DecodeMeta decodes only the listing fields of a post.
func DecodeMeta(slug string, text string) domain.PostMeta {
	return DecodePost(slug, text).Meta()
}

// SlugFromFilename returns the slug of a post document name and whether the name is one.
func SlugFromFilename(name string) (string, bool) {
	slug, found := strings.CutSuffix(name, Extension)
	if !found || slug == "" {
		return "", false
	}
	return slug, true
}

// Filename returns the document name for a slug.
func Filename(slug string) string {
	return slug + Extension
}
