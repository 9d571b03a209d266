package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stampkit/internal/action"
	apperrors "stampkit/internal/errors"
	"stampkit/internal/integration"
	"stampkit/internal/parser"
	"stampkit/internal/publisher"
	"stampkit/internal/ui"
	"stampkit/pkg/task"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "stampkit",
	Short:   "StampKit - template workspace publishing tool",
	Version: version,
	Long: `StampKit is the publish backend of a software-template scaffolding platform.
It takes a prepared workspace directory and turns it into a new repository on a
self-hosted SCM server: create the repository over the REST API, optionally
enable LFS, then commit and push the workspace.`,
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a prepared workspace to a new remote repository",
	Long: `Publish reads a task file describing the target repository, resolves the
matching integration credential, creates the repository on the SCM server and
pushes the workspace as the initial commit.

On success the resolved repository URLs are printed as action outputs.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		integrationsPath, _ := cmd.Flags().GetString("integrations")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := runPublish(file, integrationsPath, dryRun); err != nil {
			apperrors.HandleError(err)
			os.Exit(1)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a task file and the integrations configuration",
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		integrationsPath, _ := cmd.Flags().GetString("integrations")
		console := ui.NewConsole()

		tf, err := parser.Parse(file)
		if err != nil {
			apperrors.HandleError(err)
			os.Exit(1)
		}

		registry, err := integration.Load(integrationsPath)
		if err != nil {
			apperrors.HandleError(err)
			os.Exit(1)
		}

		console.PrintSuccess(fmt.Sprintf("Task %q is valid (%d integration(s) configured)", tf.Metadata.Name, registry.Hosts()))
	},
}

func runPublish(file, integrationsPath string, dryRun bool) error {
	console := ui.NewConsole()

	tf, err := parser.Parse(file)
	if err != nil {
		return apperrors.NewParseError(
			fmt.Sprintf("Failed to load task file %s", file),
			err.Error(),
			"Fix the task file and run publish again",
			err,
		)
	}
	slog.Info("Task file parsed successfully", "name", tf.Metadata.Name, "action", tf.Spec.Action)

	registry, err := integration.Load(integrationsPath)
	if err != nil {
		return apperrors.NewConfigError(
			fmt.Sprintf("Failed to load integrations file %s", integrationsPath),
			err.Error(),
			"Fix the integrations file and run publish again",
			err,
		)
	}

	secrets := task.EnvSecretStore{}
	var token string
	if tf.Spec.TokenSecret != "" {
		value, ok := secrets.Secret(tf.Spec.TokenSecret)
		if !ok {
			return apperrors.NewAuthError(
				fmt.Sprintf("Secret %q referenced by the task is not set", tf.Spec.TokenSecret),
				"The environment variable backing the secret is missing",
				fmt.Sprintf("Export %s before running publish", tf.Spec.TokenSecret),
				fmt.Errorf("secret %q is not set", tf.Spec.TokenSecret),
			)
		}
		token = value
	}

	if dryRun {
		console.PrintWarning("DRY RUN MODE - no repository will be created and nothing will be pushed")
		console.PrintInfo(fmt.Sprintf("Would publish workspace %s to %s", tf.Spec.Workspace, tf.Spec.RepoURL))
		if tf.Spec.EnableLFS {
			console.PrintInfo("Would enable LFS on the created repository")
		}
		console.PrintSuccess("Dry run completed successfully")
		return nil
	}

	engine := task.NewEngine()
	publish := action.NewBitbucketServerPublish(
		registry,
		publisher.NewGitPublisher(),
		action.GitAuthorInfo{Name: tf.Spec.Git.AuthorName, Email: tf.Spec.Git.AuthorEmail},
		tf.Spec.Git.CommitMessage,
	)
	if err := engine.Register(publish); err != nil {
		return err
	}

	run := &task.Run{
		WorkspacePath: tf.Spec.Workspace,
		Logger:        slog.Default(),
		Secrets:       secrets,
		Input: &action.PublishInput{
			RepoURL:        tf.Spec.RepoURL,
			RepoVisibility: tf.Spec.RepoVisibility,
			DefaultBranch:  tf.Spec.DefaultBranch,
			EnableLFS:      tf.Spec.EnableLFS,
			Token:          token,
			Description:    tf.Spec.Description,
		},
	}

	// An interrupt aborts the in-flight HTTP call or push; already-created
	// remote state is left as-is.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx, tf.Spec.Action, run); err != nil {
		return err
	}

	console.PrintSuccess(fmt.Sprintf("Workspace published: %s", tf.Metadata.Name))
	for _, out := range run.Outputs() {
		console.PrintOutput(out.Key, out.Value)
	}
	return nil
}

func init() {
	publishCmd.Flags().StringP("file", "f", "", "Path to the publish task YAML file (required)")
	publishCmd.Flags().String("integrations", "integrations.yaml", "Path to the integrations YAML file")
	publishCmd.Flags().Bool("dry-run", false, "Validate everything without creating or pushing anything")
	if err := publishCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for publish command", "error", err)
	}
	rootCmd.AddCommand(publishCmd)

	validateCmd.Flags().StringP("file", "f", "", "Path to the publish task YAML file (required)")
	validateCmd.Flags().String("integrations", "integrations.yaml", "Path to the integrations YAML file")
	if err := validateCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for validate command", "error", err)
	}
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
