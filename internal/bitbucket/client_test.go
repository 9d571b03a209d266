package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stampkit/internal/scm"
)

func testTarget() *scm.TargetDescriptor {
	return &scm.TargetDescriptor{
		Host:    "hosted.bitbucket.com",
		Project: "project",
		Repo:    "repo",
	}
}

func creationResponse(cloneHref, selfHref string) string {
	return fmt.Sprintf(`{
		"slug": "repo",
		"links": {
			"clone": [
				{"name": "ssh", "href": "ssh://git@hosted.bitbucket.com:7999/project/repo.git"},
				{"name": "http", "href": %q}
			],
			"self": [
				{"href": %q}
			]
		}
	}`, cloneHref, selfHref)
}

func TestClient_CreateRepository(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse func(w http.ResponseWriter, r *http.Request)
		expectError  bool
		errorMsg     string
		cloneURL     string
		browseURL    string
	}{
		{
			name: "Successful creation picks http clone and self links",
			mockResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, creationResponse(
					"https://hosted.bitbucket.com/scm/project/repo",
					"https://hosted.bitbucket.com/projects/project/repos/repo",
				))
			},
			cloneURL:  "https://hosted.bitbucket.com/scm/project/repo",
			browseURL: "https://hosted.bitbucket.com/projects/project/repos/repo",
		},
		{
			name: "Cross-host links are preserved verbatim",
			mockResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, creationResponse(
					"https://git-frontend.example.com/scm/project/repo",
					"https://git-frontend.example.com/projects/project/repos/repo",
				))
			},
			cloneURL:  "https://git-frontend.example.com/scm/project/repo",
			browseURL: "https://git-frontend.example.com/projects/project/repos/repo",
		},
		{
			name: "Server error propagates status and body",
			mockResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"errors":[{"message":"This repository URL is already taken"}]}`)
			},
			expectError: true,
			errorMsg:    "status 409",
		},
		{
			name: "Response without http clone link",
			mockResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"links": {"clone": [{"name": "ssh", "href": "ssh://x"}], "self": [{"href": "https://x"}]}}`)
			},
			expectError: true,
			errorMsg:    "no http clone link",
		},
		{
			name: "Response without self link",
			mockResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"links": {"clone": [{"name": "http", "href": "https://x"}]}}`)
			},
			expectError: true,
			errorMsg:    "no self link",
		},
		{
			name: "Garbage response body",
			mockResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `not json at all`)
			},
			expectError: true,
			errorMsg:    "unreadable response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath, gotAuth, gotBody string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				buf := make([]byte, 1024)
				n, _ := r.Body.Read(buf)
				gotBody = string(buf[:n])
				tt.mockResponse(w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-token")
			result, err := client.CreateRepository(context.Background(), testTarget(), scm.CreateOptions{Public: false})

			if gotMethod != http.MethodPost {
				t.Errorf("Expected POST, got %s", gotMethod)
			}
			if gotPath != "/projects/project/repos" {
				t.Errorf("Expected path /projects/project/repos, got %s", gotPath)
			}
			if gotAuth != "Bearer test-token" {
				t.Errorf("Expected bearer auth header, got %q", gotAuth)
			}
			if !strings.Contains(gotBody, `"name":"repo"`) || !strings.Contains(gotBody, `"public":false`) {
				t.Errorf("Unexpected request body: %s", gotBody)
			}

			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error message to contain %q, got: %s", tt.errorMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %s", err)
			}
			if result.CloneURL != tt.cloneURL {
				t.Errorf("Expected clone URL %q, got %q", tt.cloneURL, result.CloneURL)
			}
			if result.BrowseURL != tt.browseURL {
				t.Errorf("Expected browse URL %q, got %q", tt.browseURL, result.BrowseURL)
			}
		})
	}
}

func TestClient_CreateRepository_PublicFlag(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, creationResponse("https://x/scm/project/repo", "https://x/projects/project/repos/repo"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	if _, err := client.CreateRepository(context.Background(), testTarget(), scm.CreateOptions{Public: true}); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !strings.Contains(gotBody, `"public":true`) {
		t.Errorf("Expected public repository request, got body: %s", gotBody)
	}
}

func TestClient_EnableLFS(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{name: "200 is success", status: http.StatusOK},
		{name: "204 is success", status: http.StatusNoContent},
		{name: "500 fails", status: http.StatusInternalServerError, expectError: true},
		{name: "404 fails", status: http.StatusNotFound, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath, gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-token")
			err := client.EnableLFS(context.Background(), testTarget())

			if gotMethod != http.MethodPut {
				t.Errorf("Expected PUT, got %s", gotMethod)
			}
			if gotPath != "/git-lfs/admin/projects/project/repos/repo/enabled" {
				t.Errorf("Unexpected path: %s", gotPath)
			}
			if gotAuth != "Bearer test-token" {
				t.Errorf("Expected bearer auth header, got %q", gotAuth)
			}

			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if !strings.Contains(err.Error(), "Failed to enable LFS") {
					t.Errorf("Expected LFS failure message, got: %s", err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %s", err)
			}
		})
	}
}

func TestClient_CreateRepository_Cancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "test-token")
	_, err := client.CreateRepository(ctx, testTarget(), scm.CreateOptions{})
	if err == nil {
		t.Fatal("Expected error from cancelled context but got none")
	}
	if !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("Expected context cancellation error, got: %s", err)
	}
}
