package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

// Engine executes registered actions by name. It owns no state beyond the
// registration table, which is write-once at startup; concurrent Run calls
// are safe as long as registration has finished.
type Engine struct {
	actions map[string]Action
}

// NewEngine creates an empty action engine.
func NewEngine() *Engine {
	return &Engine{
		actions: make(map[string]Action),
	}
}

// Register adds an action under its own name. Registering the same name twice
// is a programming error and is rejected.
func (e *Engine) Register(action Action) error {
	name := action.Name()
	if _, exists := e.actions[name]; exists {
		return fmt.Errorf("action %q is already registered", name)
	}
	e.actions[name] = action
	return nil
}

// Names returns the sorted list of registered action names.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.actions))
	for name := range e.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one action with the given run context. A missing run ID is
// filled in with a fresh UUID and a missing logger with the default slog
// logger, so actions can rely on both being present.
func (e *Engine) Run(ctx context.Context, name string, run *Run) error {
	action, ok := e.actions[name]
	if !ok {
		return fmt.Errorf("unknown action: %q", name)
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Logger == nil {
		run.Logger = slog.Default()
	}
	run.Logger = run.Logger.With("runId", run.ID, "action", name)

	run.Logger.Info("Starting action", "workspace", run.WorkspacePath)
	if err := action.Execute(ctx, run); err != nil {
		run.Logger.Error("Action failed", "error", err)
		return err
	}

	run.Logger.Info("Action completed successfully", "outputs", len(run.Outputs()))
	return nil
}
