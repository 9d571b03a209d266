// Package publisher drives the local git workflow that turns a prepared
// workspace directory into the initial commit of a remote repository.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	apperrors "stampkit/internal/errors"
)

// DefaultCommitMessage is used when the caller's configuration supplies none.
const DefaultCommitMessage = "Initial commit"

// Request is the fully assembled contract for one publish: everything the git
// layer needs is resolved before any side effect occurs.
type Request struct {
	Dir           string
	RemoteURL     string
	DefaultBranch string
	AuthUsername  string
	AuthToken     string
	AuthorName    string
	AuthorEmail   string
	CommitMessage string
}

// Publisher defines the local git collaborator consumed by publish actions.
type Publisher interface {
	Push(ctx context.Context, req *Request) error
}

// GitPublisher implements Publisher with go-git: init, add, commit, push.
// It performs no retries; any failure propagates unchanged to the caller.
type GitPublisher struct{}

func NewGitPublisher() *GitPublisher {
	return &GitPublisher{}
}

// Push initializes a repository in the workspace directory, commits its
// contents and pushes the default branch to the remote URL.
func (p *GitPublisher) Push(ctx context.Context, req *Request) error {
	if _, err := os.Stat(req.Dir); os.IsNotExist(err) {
		return apperrors.NewFileSystemError(
			fmt.Sprintf("Workspace directory does not exist: %s", req.Dir),
			"The workspace must be prepared before publishing",
			"Check the workspace path in the task file",
			fmt.Errorf("workspace directory does not exist: %s", req.Dir),
		)
	}

	message := req.CommitMessage
	if message == "" {
		message = DefaultCommitMessage
	}

	slog.Info("Initializing git repository", "directory", req.Dir, "branch", req.DefaultBranch)

	repo, err := git.PlainInitWithOptions(req.Dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(req.DefaultBranch),
		},
	})
	if err != nil {
		return pushError(req, "failed to initialize git repository", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return pushError(req, "failed to get worktree", err)
	}

	if _, err := worktree.Add("."); err != nil {
		return pushError(req, "failed to add files to git", err)
	}

	commit, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  req.AuthorName,
			Email: req.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return pushError(req, "failed to create initial commit", err)
	}

	slog.Info("Created initial commit", "hash", commit, "message", message)

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{req.RemoteURL},
	}); err != nil {
		return pushError(req, "failed to add remote origin", err)
	}

	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		Auth: &http.BasicAuth{
			Username: req.AuthUsername,
			Password: req.AuthToken,
		},
	}); err != nil {
		return pushError(req, "failed to push to remote repository", err)
	}

	slog.Info("Successfully pushed workspace to remote", "url", req.RemoteURL, "branch", req.DefaultBranch)
	return nil
}

func pushError(req *Request, summary string, err error) error {
	return apperrors.NewPushError(
		fmt.Sprintf("Publishing %s to %s failed", req.Dir, req.RemoteURL),
		fmt.Sprintf("%s: %v", summary, err),
		"Check the remote URL and the token's push permissions",
		fmt.Errorf("%s: %w", summary, err),
	)
}
