package scm

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "stampkit/internal/errors"
)

// TargetDescriptor is the parsed, validated representation of "which
// repository, on which host" derived from the user's repoUrl input.
type TargetDescriptor struct {
	Host    string
	Project string
	Repo    string
	// Owner is only meaningful for workspace-scoped hosts; project-scoped
	// servers leave it empty.
	Owner string
}

// ParseTarget parses a repository location string of the form
// "host?project=PROJ&repo=name" into a TargetDescriptor. Project and repo are
// validated independently so that each missing field gets its own message.
func ParseTarget(repoURL string) (*TargetDescriptor, error) {
	host, query, _ := strings.Cut(repoURL, "?")
	if host == "" {
		return nil, invalidTarget(repoURL, "missing host")
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("Failed to parse repository location %q", repoURL),
			"The query parameters are malformed",
			"Use the form host?project=<project>&repo=<repo>",
			fmt.Errorf("invalid repo URL %q: %w", repoURL, err),
		)
	}

	target := &TargetDescriptor{
		Host:    host,
		Project: values.Get("project"),
		Repo:    values.Get("repo"),
		Owner:   values.Get("owner"),
	}

	var missing []string
	if target.Project == "" {
		missing = append(missing, "missing project")
	}
	if target.Repo == "" {
		missing = append(missing, "missing repo")
	}
	if len(missing) > 0 {
		return nil, invalidTarget(repoURL, strings.Join(missing, ", "))
	}

	return target, nil
}

func invalidTarget(repoURL, reason string) error {
	return apperrors.NewInvalidInputError(
		fmt.Sprintf("Failed to parse repository location %q", repoURL),
		reason,
		"Use the form host?project=<project>&repo=<repo>",
		fmt.Errorf("invalid repo URL %q: %s", repoURL, reason),
	)
}
