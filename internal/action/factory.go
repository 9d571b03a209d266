package action

import (
	"fmt"

	"stampkit/internal/bitbucket"
	"stampkit/internal/integration"
	"stampkit/internal/scm"
)

// ProviderFactory maps a resolved integration entry to the repository
// provisioner implementation for its provider kind. The set of kinds is
// closed and dispatched explicitly.
type ProviderFactory struct{}

// NewProviderFactory creates a new instance of ProviderFactory.
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// GetProvisioner returns the provisioner for the entry's provider, configured
// with the entry's API base URL and the already-resolved token.
func (f *ProviderFactory) GetProvisioner(entry *integration.Entry, token string) (scm.RepositoryProvisioner, error) {
	switch entry.Provider {
	case integration.ProviderBitbucketServer:
		return bitbucket.NewClient(entry.APIBaseURL, token), nil
	default:
		return nil, fmt.Errorf("unsupported SCM provider: %s", entry.Provider)
	}
}
