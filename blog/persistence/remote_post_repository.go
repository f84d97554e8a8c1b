package persistence

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/dfryer1193/sitepress/blog/document"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/rs/zerolog/log"
)

var _ domain.PostStore = (*RemotePostStore)(nil)

// RemotePostStore implements domain.PostStore on top of a hosted repository.
// Every call goes to the repository; nothing is cached between calls.
type RemotePostStore struct {
	repo          domain.SourceRepository
	basePath      string
	defaultAuthor string
}

// NewRemotePostStore creates a store keeping one document per post under basePath in repo
func NewRemotePostStore(repo domain.SourceRepository, basePath string, defaultAuthor string) *RemotePostStore {
	if basePath == "" {
		basePath = DefaultPostDir
	}
	return &RemotePostStore{
		repo:          repo,
		basePath:      basePath,
		defaultAuthor: defaultAuthor,
	}
}

func (r *RemotePostStore) Name() string {
	return "github"
}

// List fetches every post document one at a time and returns their metadata, most recent first
func (r *RemotePostStore) List(ctx context.Context) ([]domain.PostMeta, error) {
	entries, err := r.repo.ListDirectory(ctx, r.basePath)
	if errors.Is(err, domain.ErrNotFound) {
		// Nothing has been published yet
		return []domain.PostMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list posts in %s: %w", r.repo.GetRepoFullName(), err)
	}

	posts := make([]domain.PostMeta, 0, len(entries))
	for _, entry := range entries {
		slug, ok := listedSlug(entry.Name)
		if !ok {
			continue
		}

		file, err := r.repo.GetFile(ctx, r.path(slug))
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("slug", slug).Msg("Post disappeared while listing")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch post %s: %w", slug, err)
		}
		posts = append(posts, document.DecodeMeta(slug, string(file.Content)))
	}

	domain.SortByDateDesc(posts)
	return posts, nil
}

// Get fetches a single post along with its revision SHA
func (r *RemotePostStore) Get(ctx context.Context, slug string) (*domain.Post, error) {
	if !domain.ValidSlug(slug) {
		return nil, fmt.Errorf("invalid slug %q: %w", slug, domain.ErrNotFound)
	}

	file, err := r.repo.GetFile(ctx, r.path(slug))
	if err != nil {
		return nil, err
	}

	post := document.DecodePost(slug, string(file.Content))
	post.SHA = file.SHA
	return post, nil
}

// Create commits a new post document. The repository refuses to create over an existing path
func (r *RemotePostStore) Create(ctx context.Context, in domain.PostInput) (string, error) {
	slug := domain.Slugify(in.Title)
	if slug == "" {
		return "", &domain.ValidationError{Field: "title", Reason: "must contain at least one letter or digit"}
	}

	post := newPost(slug, in, r.defaultAuthor)
	message := fmt.Sprintf("Add blog post: %s", post.Title)
	if err := r.repo.CreateFile(ctx, r.path(slug), message, []byte(document.Encode(post))); err != nil {
		return "", err
	}

	return slug, nil
}

// Update fetches the current revision and commits the new document against it.
// A concurrent writer makes the revision stale and the commit fails with domain.ErrConflict.
func (r *RemotePostStore) Update(ctx context.Context, slug string, in domain.PostInput) error {
	existing, err := r.Get(ctx, slug)
	if err != nil {
		return err
	}

	post := mergePost(existing, in, r.defaultAuthor)
	message := fmt.Sprintf("Update blog post: %s", post.Title)
	return r.repo.UpdateFile(ctx, r.path(slug), message, []byte(document.Encode(post)), existing.SHA)
}

// Delete fetches the current revision and removes the document
func (r *RemotePostStore) Delete(ctx context.Context, slug string) error {
	existing, err := r.Get(ctx, slug)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Delete blog post: %s", slug)
	return r.repo.DeleteFile(ctx, r.path(slug), message, existing.SHA)
}

func (r *RemotePostStore) path(slug string) string {
	return path.Join(r.basePath, document.Filename(slug))
}
