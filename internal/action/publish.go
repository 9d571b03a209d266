// Package action contains the publish actions registered into the task
// engine. Each action wires the target parser, integration registry, remote
// provisioner and local git publisher into one strictly sequential flow.
package action

import (
	"context"
	"fmt"

	apperrors "stampkit/internal/errors"
	"stampkit/internal/integration"
	"stampkit/internal/publisher"
	"stampkit/internal/scm"
	"stampkit/pkg/task"
)

// Name of the Bitbucket Server publish action in the engine registry.
const BitbucketServerPublishName = "publish:bitbucket-server"

// authUsername is the fixed username Bitbucket Server expects for HTTP
// token authentication.
const authUsername = "x-token-auth"

// defaultBranch is used when the task supplies none.
const defaultBranch = "master"

// Output keys emitted on success. Both are emitted exactly once, and only
// after every prior stage succeeded.
const (
	OutputRemoteURL       = "remoteUrl"
	OutputRepoContentsURL = "repoContentsUrl"
)

// PublishInput is the input payload the publish action expects on task.Run.
type PublishInput struct {
	RepoURL        string
	RepoVisibility string
	DefaultBranch  string
	EnableLFS      bool
	Token          string
	Description    string
}

// GitAuthorInfo carries configuration-level author defaults for the initial
// commit. Empty values mean the git layer's own defaults apply.
type GitAuthorInfo struct {
	Name  string
	Email string
}

// BitbucketServerPublish creates a repository on a self-hosted Bitbucket
// Server instance and pushes the prepared workspace to it.
//
// The flow is deliberately no-retry and no-rollback: the first failure aborts
// the run, and side effects that already happened (an already-created remote
// repository, in particular) are left in place. Callers who want cleanup of
// half-published repositories must do it themselves.
type BitbucketServerPublish struct {
	registry      *integration.Registry
	factory       *ProviderFactory
	publisher     publisher.Publisher
	author        GitAuthorInfo
	commitMessage string
}

// NewBitbucketServerPublish wires the action with its collaborators. The
// registry is shared and read-only; the publisher is stateless.
func NewBitbucketServerPublish(registry *integration.Registry, pub publisher.Publisher, author GitAuthorInfo, commitMessage string) *BitbucketServerPublish {
	return &BitbucketServerPublish{
		registry:      registry,
		factory:       NewProviderFactory(),
		publisher:     pub,
		author:        author,
		commitMessage: commitMessage,
	}
}

// Name returns the engine registration name of this action.
func (a *BitbucketServerPublish) Name() string {
	return BitbucketServerPublishName
}

// Execute runs the publish flow: parse target, resolve integration, select
// credential, create the repository, optionally enable LFS, push the
// workspace, emit outputs.
func (a *BitbucketServerPublish) Execute(ctx context.Context, run *task.Run) error {
	input, ok := run.Input.(*PublishInput)
	if !ok {
		return apperrors.NewInvalidInputError(
			"Publish action received an unexpected input payload",
			fmt.Sprintf("expected *action.PublishInput, got %T", run.Input),
			"",
			fmt.Errorf("invalid input type %T for %s", run.Input, a.Name()),
		)
	}

	logger := run.Logger

	target, err := scm.ParseTarget(input.RepoURL)
	if err != nil {
		return err
	}
	logger.Info("Parsed target descriptor", "host", target.Host, "project", target.Project, "repo", target.Repo)

	entry, err := a.registry.Resolve(target.Host)
	if err != nil {
		return err
	}

	token, err := integration.SelectToken(input.Token, entry)
	if err != nil {
		return err
	}

	provisioner, err := a.factory.GetProvisioner(entry, token)
	if err != nil {
		return err
	}

	created, err := provisioner.CreateRepository(ctx, target, scm.CreateOptions{
		Public:      input.RepoVisibility == "public",
		Description: input.Description,
	})
	if err != nil {
		return err
	}

	if input.EnableLFS {
		// The toggle is attempted whenever requested, never silently
		// skipped. A failure here aborts the run with the repository
		// already created and left in place.
		if err := provisioner.EnableLFS(ctx, target); err != nil {
			return err
		}
		logger.Info("LFS enabled", "project", target.Project, "repo", target.Repo)
	}

	branch := input.DefaultBranch
	if branch == "" {
		branch = defaultBranch
	}

	if err := a.publisher.Push(ctx, &publisher.Request{
		Dir:           run.WorkspacePath,
		RemoteURL:     created.CloneURL,
		DefaultBranch: branch,
		AuthUsername:  authUsername,
		AuthToken:     token,
		AuthorName:    a.author.Name,
		AuthorEmail:   a.author.Email,
		CommitMessage: a.commitMessage,
	}); err != nil {
		return err
	}

	run.Output(OutputRemoteURL, created.CloneURL)
	run.Output(OutputRepoContentsURL, created.BrowseURL)
	return nil
}
