package scm

import "context"

// RepositoryCreation holds the URLs advertised by the server for a freshly
// created repository. Both are taken verbatim from the creation response,
// even when they point at a different host than the API base URL.
type RepositoryCreation struct {
	CloneURL  string
	BrowseURL string
}

// CreateOptions carries the caller-controlled settings for repository creation.
type CreateOptions struct {
	Public      bool
	Description string
}

// RepositoryProvisioner defines the interface for creating repositories on one
// SCM server instance. This interface is provider-agnostic; each supported
// provider kind ships its own implementation.
type RepositoryProvisioner interface {
	// CreateRepository creates the repository described by the target and
	// returns its clone and browse URLs.
	CreateRepository(ctx context.Context, target *TargetDescriptor, opts CreateOptions) (*RepositoryCreation, error)

	// EnableLFS toggles large-file-storage support on an existing repository.
	EnableLFS(ctx context.Context, target *TargetDescriptor) error
}
