package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/google/go-github/v75/github"
)

// GithubContentRepository is an implementation of domain.SourceRepository that uses the GitHub contents API.
type GithubContentRepository struct {
	client  *github.Client
	owner   string
	gitRepo string
	branch  string
}

// NewGithubContentRepository creates a new GithubContentRepository.
// An empty branch targets the repository's default branch.
func NewGithubContentRepository(client *github.Client, owner string, gitRepo string, branch string) domain.SourceRepository {
	return &GithubContentRepository{
		client:  client,
		owner:   owner,
		gitRepo: gitRepo,
		branch:  branch,
	}
}

// NewClient returns a go-github client that sends token as a bearer credential.
func NewClient(token string) *github.Client {
	return github.NewClient(nil).WithAuthToken(token)
}

// ListDirectory fetches the entries of a directory.
func (g *GithubContentRepository) ListDirectory(ctx context.Context, path string) ([]domain.SourceFile, error) {
	op := fmt.Sprintf("listing directory %s", path)
	_, dirContent, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, path, g.getOptions())
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	files := make([]domain.SourceFile, 0, len(dirContent))
	for _, entry := range dirContent {
		if entry.GetType() != "file" {
			continue
		}
		files = append(files, domain.SourceFile{
			Name: entry.GetName(),
			Path: entry.GetPath(),
			SHA:  entry.GetSHA(),
		})
	}
	return files, nil
}

// GetFile fetches the decoded contents and SHA of a file.
func (g *GithubContentRepository) GetFile(ctx context.Context, path string) (*domain.SourceFile, error) {
	op := fmt.Sprintf("getting file %s", path)
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, path, g.getOptions())
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("github: %s returned no file content: %w", op, domain.ErrNotFound)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: %s failed to decode content: %v: %w", op, err, domain.ErrBackendUnavailable)
	}

	return &domain.SourceFile{
		Name:    fileContent.GetName(),
		Path:    fileContent.GetPath(),
		SHA:     fileContent.GetSHA(),
		Content: []byte(content),
	}, nil
}

// CreateFile creates a file. The API rejects creation at an existing path.
func (g *GithubContentRepository) CreateFile(ctx context.Context, path string, message string, content []byte) error {
	op := fmt.Sprintf("creating file %s", path)
	_, _, err := g.client.Repositories.CreateFile(ctx, g.owner, g.gitRepo, path, g.fileOptions(message, content, ""))
	if err != nil {
		return handleGithubError(op, err)
	}
	return nil
}

// UpdateFile overwrites a file. sha must be the file's current revision.
func (g *GithubContentRepository) UpdateFile(ctx context.Context, path string, message string, content []byte, sha string) error {
	op := fmt.Sprintf("updating file %s", path)
	_, _, err := g.client.Repositories.UpdateFile(ctx, g.owner, g.gitRepo, path, g.fileOptions(message, content, sha))
	if err != nil {
		return handleGithubError(op, err)
	}
	return nil
}

// DeleteFile removes a file. sha must be the file's current revision.
func (g *GithubContentRepository) DeleteFile(ctx context.Context, path string, message string, sha string) error {
	op := fmt.Sprintf("deleting file %s", path)
	_, _, err := g.client.Repositories.DeleteFile(ctx, g.owner, g.gitRepo, path, g.fileOptions(message, nil, sha))
	if err != nil {
		return handleGithubError(op, err)
	}
	return nil
}

// GetRepoFullName returns the repository's full name (e.g., "owner/repo").
func (g *GithubContentRepository) GetRepoFullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.gitRepo)
}

func (g *GithubContentRepository) getOptions() *github.RepositoryContentGetOptions {
	if g.branch == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: g.branch}
}

func (g *GithubContentRepository) fileOptions(message string, content []byte, sha string) *github.RepositoryContentFileOptions {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
	}
	if sha != "" {
		opts.SHA = github.Ptr(sha)
	}
	if g.branch != "" {
		opts.Branch = github.Ptr(g.branch)
	}
	return opts
}

// handleGithubError inspects an error from the go-github client and maps it onto the domain error taxonomy.
// The API's status and message are kept in the error text for diagnostics.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status := errResp.Response.StatusCode
		kind := domain.ErrBackendUnavailable
		switch status {
		case http.StatusNotFound:
			kind = domain.ErrNotFound
		case http.StatusConflict, http.StatusUnprocessableEntity:
			kind = domain.ErrConflict
		}
		return fmt.Errorf("github: %s failed with status %d: %s: %w", op, status, errResp.Message, kind)
	}

	return fmt.Errorf("github: %s failed: %v: %w", op, err, domain.ErrBackendUnavailable)
}
