package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dfryer1193/sitepress/blog/document"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/rs/zerolog/log"
)

var _ domain.PostStore = (*LocalPostStore)(nil)

// DefaultPostDir is where post documents live when no directory is configured.
const DefaultPostDir = "content/blogs"

// LocalPostStore implements domain.PostStore using one document file per post in a directory
type LocalPostStore struct {
	dir           string
	defaultAuthor string
}

// NewLocalPostStore creates a new LocalPostStore rooted at dir
func NewLocalPostStore(dir string, defaultAuthor string) *LocalPostStore {
	if dir == "" {
		dir = DefaultPostDir
	}
	return &LocalPostStore{
		dir:           dir,
		defaultAuthor: defaultAuthor,
	}
}

func (r *LocalPostStore) Name() string {
	return "local"
}

// List reads the metadata of every post document, most recent first
func (r *LocalPostStore) List(ctx context.Context) ([]domain.PostMeta, error) {
	if err := r.ensureDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read post directory: %w", err)
	}

	posts := make([]domain.PostMeta, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		slug, ok := listedSlug(entry.Name())
		if !ok {
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			log.Error().Err(err).Str("file", entry.Name()).Msg("Failed to read post file")
			continue
		}
		posts = append(posts, document.DecodeMeta(slug, string(content)))
	}

	domain.SortByDateDesc(posts)
	return posts, nil
}

// Get reads and decodes a single post
func (r *LocalPostStore) Get(ctx context.Context, slug string) (*domain.Post, error) {
	if err := r.ensureDir(); err != nil {
		return nil, err
	}

	content, err := r.read(slug)
	if err != nil {
		return nil, err
	}

	return document.DecodePost(slug, string(content)), nil
}

// Create writes a new post document. An existing document with the same slug is never overwritten
func (r *LocalPostStore) Create(ctx context.Context, in domain.PostInput) (string, error) {
	slug := domain.Slugify(in.Title)
	if slug == "" {
		return "", &domain.ValidationError{Field: "title", Reason: "must contain at least one letter or digit"}
	}

	if err := r.ensureDir(); err != nil {
		return "", err
	}

	post := newPost(slug, in, r.defaultAuthor)

	f, err := os.OpenFile(r.path(slug), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("post %s already exists: %w", slug, domain.ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create post file: %w", err)
	}

	if _, err := f.WriteString(document.Encode(post)); err != nil {
		f.Close()
		os.Remove(r.path(slug))
		return "", fmt.Errorf("failed to write post file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close post file: %w", err)
	}

	return slug, nil
}

// Update rewrites an existing post, keeping its date and author unless overridden
func (r *LocalPostStore) Update(ctx context.Context, slug string, in domain.PostInput) error {
	if err := r.ensureDir(); err != nil {
		return err
	}

	content, err := r.read(slug)
	if err != nil {
		return err
	}
	existing := document.DecodePost(slug, string(content))

	post := mergePost(existing, in, r.defaultAuthor)
	return r.writeAtomic(slug, []byte(document.Encode(post)))
}

// Delete removes a post document
func (r *LocalPostStore) Delete(ctx context.Context, slug string) error {
	if err := r.ensureDir(); err != nil {
		return err
	}
	if !domain.ValidSlug(slug) {
		return fmt.Errorf("invalid slug %q: %w", slug, domain.ErrNotFound)
	}

	if err := os.Remove(r.path(slug)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("post %s: %w", slug, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to remove post file: %w", err)
	}
	return nil
}

func (r *LocalPostStore) ensureDir() error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create post directory: %w", err)
	}
	return nil
}

func (r *LocalPostStore) path(slug string) string {
	return filepath.Join(r.dir, document.Filename(slug))
}

func (r *LocalPostStore) read(slug string) ([]byte, error) {
	if !domain.ValidSlug(slug) {
		return nil, fmt.Errorf("invalid slug %q: %w", slug, domain.ErrNotFound)
	}

	content, err := os.ReadFile(r.path(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("post %s: %w", slug, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read post file: %w", err)
	}
	return content, nil
}

// writeAtomic replaces the document through a temp file and rename so readers never see a partial write
func (r *LocalPostStore) writeAtomic(slug string, content []byte) error {
	tmp, err := os.CreateTemp(r.dir, "."+slug+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write post file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set post file mode: %w", err)
	}
	if err := os.Rename(tmpName, r.path(slug)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace post file: %w", err)
	}
	return nil
}
