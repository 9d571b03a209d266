package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validTaskFile = `
apiVersion: v1
kind: PublishTask
metadata:
  name: payments-service
  description: Publish the rendered payments-service template
spec:
  action: publish:bitbucket-server
  workspace: /tmp/workspaces/payments-service
  repoUrl: hosted.bitbucket.com?project=payments&repo=payments-service
  repoVisibility: private
  defaultBranch: main
  enableLFS: true
  tokenSecret: BITBUCKET_TOKEN
  git:
    authorName: Platform Scaffolder
    authorEmail: scaffolder@example.com
    commitMessage: initial template render
`

func writeTaskFile(t *testing.T, content string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), "task.yaml")
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write task file: %s", err)
	}
	return filePath
}

func TestParse_Valid(t *testing.T) {
	tf, err := Parse(writeTaskFile(t, validTaskFile))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if tf.Metadata.Name != "payments-service" {
		t.Errorf("Expected metadata name 'payments-service', got %q", tf.Metadata.Name)
	}
	if tf.Spec.Action != "publish:bitbucket-server" {
		t.Errorf("Unexpected action: %q", tf.Spec.Action)
	}
	if tf.Spec.RepoURL != "hosted.bitbucket.com?project=payments&repo=payments-service" {
		t.Errorf("Unexpected repoUrl: %q", tf.Spec.RepoURL)
	}
	if !tf.Spec.EnableLFS {
		t.Error("Expected enableLFS to be true")
	}
	if tf.Spec.DefaultBranch != "main" {
		t.Errorf("Unexpected defaultBranch: %q", tf.Spec.DefaultBranch)
	}
	if tf.Spec.Git.AuthorName != "Platform Scaffolder" {
		t.Errorf("Unexpected git author: %q", tf.Spec.Git.AuthorName)
	}
	if tf.Spec.TokenSecret != "BITBUCKET_TOKEN" {
		t.Errorf("Unexpected tokenSecret: %q", tf.Spec.TokenSecret)
	}
}

func TestParse_OptionalFieldsDefaultToEmpty(t *testing.T) {
	content := `
apiVersion: v1
kind: PublishTask
metadata:
  name: minimal
spec:
  action: publish:bitbucket-server
  workspace: /tmp/workspace
  repoUrl: hosted.bitbucket.com?project=p&repo=r
`
	tf, err := Parse(writeTaskFile(t, content))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if tf.Spec.RepoVisibility != "" {
		t.Errorf("Expected empty repoVisibility, got %q", tf.Spec.RepoVisibility)
	}
	if tf.Spec.DefaultBranch != "" {
		t.Errorf("Expected empty defaultBranch, got %q", tf.Spec.DefaultBranch)
	}
	if tf.Spec.EnableLFS {
		t.Error("Expected enableLFS to default to false")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		errorMsg string
	}{
		{
			name: "Wrong kind",
			content: `
apiVersion: v1
kind: Blueprint
metadata:
  name: x
spec:
  action: publish:bitbucket-server
  workspace: /tmp/w
  repoUrl: h?project=p&repo=r
`,
			errorMsg: "field 'Kind' must be 'PublishTask'",
		},
		{
			name: "Missing repoUrl",
			content: `
apiVersion: v1
kind: PublishTask
metadata:
  name: x
spec:
  action: publish:bitbucket-server
  workspace: /tmp/w
`,
			errorMsg: "field 'RepoURL' is required but missing",
		},
		{
			name: "Invalid visibility",
			content: `
apiVersion: v1
kind: PublishTask
metadata:
  name: x
spec:
  action: publish:bitbucket-server
  workspace: /tmp/w
  repoUrl: h?project=p&repo=r
  repoVisibility: internal
`,
			errorMsg: "field 'RepoVisibility' must be one of: private public",
		},
		{
			name:     "Malformed YAML",
			content:  "kind: [unclosed",
			errorMsg: "failed to read task file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(writeTaskFile(t, tt.content))
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error message to contain %q, got: %s", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestParse_FileNotFound(t *testing.T) {
	_, err := Parse("/nonexistent/task.yaml")
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if !strings.Contains(err.Error(), "task file not found") {
		t.Errorf("Expected not-found error, got: %s", err)
	}
}
