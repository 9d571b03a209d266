package taskfile

// TaskFile is the root object that holds the entire configuration for a single
// StampKit publish run. It's populated by parsing the user's task YAML file.
type TaskFile struct {
	APIVersion string   `mapstructure:"apiVersion" validate:"required"`
	Kind       string   `mapstructure:"kind" validate:"required,eq=PublishTask"`
	Metadata   Metadata `mapstructure:"metadata" validate:"required"`
	Spec       Spec     `mapstructure:"spec" validate:"required"`
}

// Metadata contains task-level metadata.
type Metadata struct {
	Name        string `mapstructure:"name" validate:"required"`
	Description string `mapstructure:"description"`
}

// Spec contains the publish invocation handed to the task engine.
type Spec struct {
	Action         string    `mapstructure:"action" validate:"required"`
	Workspace      string    `mapstructure:"workspace" validate:"required"`
	RepoURL        string    `mapstructure:"repoUrl" validate:"required"`
	RepoVisibility string    `mapstructure:"repoVisibility" validate:"omitempty,oneof=private public"`
	DefaultBranch  string    `mapstructure:"defaultBranch"`
	EnableLFS      bool      `mapstructure:"enableLFS"`
	Description    string    `mapstructure:"description"`
	TokenSecret    string    `mapstructure:"tokenSecret"`
	Git            GitConfig `mapstructure:"git"`
}

// GitConfig carries optional author and commit defaults for the initial push.
// Empty values mean "use whatever the git layer would use on its own".
type GitConfig struct {
	AuthorName    string `mapstructure:"authorName"`
	AuthorEmail   string `mapstructure:"authorEmail"`
	CommitMessage string `mapstructure:"commitMessage"`
}
