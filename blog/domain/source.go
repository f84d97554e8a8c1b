package domain

import (
	"context"
)

// SourceFile is a single file read from the content repository.
type SourceFile struct {
	Name    string
	Path    string
	SHA     string
	Content []byte
}

// SourceRepository defines the interface for accessing repository content (e.g., from GitHub).
// This allows the remote post store to be decoupled from a specific implementation.
type SourceRepository interface {
	// ListDirectory returns the entries of a directory. Content is not populated.
	ListDirectory(ctx context.Context, path string) ([]SourceFile, error)
	// GetFile returns a file's decoded content and its revision SHA.
	GetFile(ctx context.Context, path string) (*SourceFile, error)
	// CreateFile creates a new file. It fails with ErrConflict if the path exists.
	CreateFile(ctx context.Context, path string, message string, content []byte) error
	// UpdateFile overwrites a file whose current revision is sha.
	UpdateFile(ctx context.Context, path string, message string, content []byte, sha string) error
	// DeleteFile removes a file whose current revision is sha.
	DeleteFile(ctx context.Context, path string, message string, sha string) error
	GetRepoFullName() string
}
