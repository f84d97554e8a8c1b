package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/dfryer1193/sitepress/blog/persistence"
	"github.com/dfryer1193/sitepress/internal/config"
	"github.com/dfryer1193/sitepress/shared/github"
	"github.com/rs/zerolog/log"
)

// RenderedPost is a post together with its body rendered to HTML.
type RenderedPost struct {
	*domain.Post
	ContentHTML string `json:"contentHtml"`
}

// PostService is the single entry point for post CRUD. It validates input and delegates
// to whichever store was selected at construction; it never caches.
type PostService struct {
	store    domain.PostStore
	markdown MarkdownRenderer
}

func NewPostService(store domain.PostStore, markdown MarkdownRenderer) *PostService {
	return &PostService{
		store:    store,
		markdown: markdown,
	}
}

// NewContentStore picks the post store for the process. The GitHub store is used only when
// it is enabled and fully configured; otherwise posts live on the local filesystem.
func NewContentStore(cfg *config.Config) domain.PostStore {
	if cfg.Content.UseGithubAPI && cfg.GitHub.Configured() {
		client := github.NewClient(cfg.GitHub.Token)
		repo := github.NewGithubContentRepository(client, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch)
		log.Info().
			Str("backend", "github").
			Str("repo", repo.GetRepoFullName()).
			Str("path", cfg.GitHub.ContentPath).
			Msg("Using GitHub post store")
		return persistence.NewRemotePostStore(repo, cfg.GitHub.ContentPath, cfg.Content.DefaultAuthor)
	}

	if cfg.Content.UseGithubAPI {
		log.Warn().Msg("USE_GITHUB_API is set but GitHub is not fully configured, falling back to local posts")
	}
	log.Info().Str("backend", "local").Str("dir", cfg.Content.Dir).Msg("Using local post store")
	return persistence.NewLocalPostStore(cfg.Content.Dir, cfg.Content.DefaultAuthor)
}

// Backend names the active store.
func (s *PostService) Backend() string {
	return s.store.Name()
}

func (s *PostService) ListPosts(ctx context.Context) ([]domain.PostMeta, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := s.store.Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("could not get post %s: %w", slug, err)
	}
	return post, nil
}

// RenderPost returns the post with its markdown body converted to HTML
func (s *PostService) RenderPost(ctx context.Context, slug string) (*RenderedPost, error) {
	post, err := s.GetPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	html, err := s.markdown.Render([]byte(post.Content))
	if err != nil {
		return nil, fmt.Errorf("could not render post %s: %w", slug, err)
	}

	return &RenderedPost{Post: post, ContentHTML: string(html)}, nil
}

// CreatePost validates the input and stores a new post, returning its slug
func (s *PostService) CreatePost(ctx context.Context, in domain.PostInput) (string, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}
	if domain.Slugify(in.Title) == "" {
		return "", &domain.ValidationError{Field: "title", Reason: "must contain at least one letter or digit"}
	}

	slug, err := s.store.Create(ctx, in)
	if err != nil {
		return "", fmt.Errorf("could not create post: %w", err)
	}

	log.Info().Str("slug", slug).Str("backend", s.store.Name()).Msg("Created post")
	return slug, nil
}

func (s *PostService) UpdatePost(ctx context.Context, slug string, in domain.PostInput) error {
	if err := validateInput(in); err != nil {
		return err
	}

	if err := s.store.Update(ctx, slug, in); err != nil {
		return fmt.Errorf("could not update post %s: %w", slug, err)
	}

	log.Info().Str("slug", slug).Str("backend", s.store.Name()).Msg("Updated post")
	return nil
}

func (s *PostService) DeletePost(ctx context.Context, slug string) error {
	if err := s.store.Delete(ctx, slug); err != nil {
		return fmt.Errorf("could not delete post %s: %w", slug, err)
	}

	log.Info().Str("slug", slug).Str("backend", s.store.Name()).Msg("Deleted post")
	return nil
}

// validateInput rejects a create or update missing any required field
func validateInput(in domain.PostInput) error {
	required := []struct {
		field string
		value string
	}{
		{"title", in.Title},
		{"excerpt", in.Excerpt},
		{"category", in.Category},
		{"content", in.Content},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &domain.ValidationError{Field: r.field, Reason: "is required"}
		}
	}

	if in.Date != "" {
		if _, err := time.Parse(domain.DateLayout, in.Date); err != nil {
			return &domain.ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
		}
	}
	return nil
}
