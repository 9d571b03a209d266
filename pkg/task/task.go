// Located in pkg/task/task.go
package task

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// OutputEntry is a single named value emitted by an action.
type OutputEntry struct {
	Key   string
	Value string
}

// SecretStore defines the contract for looking up secrets by name.
type SecretStore interface {
	Secret(name string) (string, bool)
}

// EnvSecretStore resolves secrets from process environment variables,
// optionally requiring a prefix on every variable name.
type EnvSecretStore struct {
	Prefix string
}

func (s EnvSecretStore) Secret(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	return os.LookupEnv(s.Prefix + strings.ToUpper(name))
}

// Run carries the per-invocation context handed to an action: the prepared
// workspace, a logger, a secret-lookup surface and the output sink. The
// action-specific input payload is stored as-is; each action documents the
// concrete type it expects.
type Run struct {
	ID            string
	WorkspacePath string
	Logger        *slog.Logger
	Secrets       SecretStore
	Input         any

	outputs []OutputEntry
}

// Output records a named value for consumers of this run. It may be called
// multiple times; entries are kept in emission order.
func (r *Run) Output(key, value string) {
	r.outputs = append(r.outputs, OutputEntry{Key: key, Value: value})
	if r.Logger != nil {
		r.Logger.Info("Action emitted output", "key", key, "value", value)
	}
}

// Outputs returns everything emitted so far, in emission order.
func (r *Run) Outputs() []OutputEntry {
	return r.outputs
}

// Action is a single pluggable unit of work registered into the engine.
type Action interface {
	Name() string
	Execute(ctx context.Context, run *Run) error
}
