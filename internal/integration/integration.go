// Package integration holds the per-host SCM integration registry. The
// registry is loaded once from static configuration at startup and is
// immutable afterwards, so it can be shared across concurrent publish runs.
package integration

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "stampkit/internal/errors"
)

// ProviderBitbucketServer is the only provider kind currently supported.
// The set is closed; adding a provider means extending the action factory.
const ProviderBitbucketServer = "bitbucket-server"

var validate = validator.New()

// Entry describes how to reach and authenticate against one SCM server
// instance. Host is the unique lookup key.
type Entry struct {
	Provider   string `mapstructure:"provider" validate:"required,oneof=bitbucket-server"`
	Host       string `mapstructure:"host" validate:"required"`
	APIBaseURL string `mapstructure:"apiBaseUrl" validate:"required,url"`
	Token      string `mapstructure:"token"`
}

type configFile struct {
	Integrations []Entry `mapstructure:"integrations" validate:"required,min=1,dive"`
}

// Registry is the immutable set of configured integrations, keyed by host.
type Registry struct {
	byHost map[string]*Entry
}

// NewRegistry builds a registry from explicit entries. Duplicate hosts are
// rejected since lookups are by exact host match.
func NewRegistry(entries []Entry) (*Registry, error) {
	byHost := make(map[string]*Entry, len(entries))
	for i := range entries {
		entry := entries[i]
		if _, exists := byHost[entry.Host]; exists {
			return nil, fmt.Errorf("duplicate integration host: %s", entry.Host)
		}
		byHost[entry.Host] = &entry
	}
	return &Registry{byHost: byHost}, nil
}

// Load reads and validates an integrations YAML file and returns the registry.
func Load(filePath string) (*Registry, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("integrations file not found: %s", filePath)
	}

	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read integrations file: %w", err)
	}

	var cfg configFile
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse integrations file - malformed YAML: %w", err)
	}

	for i := range cfg.Integrations {
		cfg.Integrations[i].Token = resolveToken(cfg.Integrations[i].Token)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid integrations file %s: %w", filePath, err)
	}

	return NewRegistry(cfg.Integrations)
}

// envVarPattern matches ${VAR_NAME} placeholders in token values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// resolveToken expands ${ENV_VAR} placeholders so tokens don't have to live
// in the file itself. Unset variables resolve to an empty token, which later
// surfaces as a missing-authorization failure rather than a config error.
func resolveToken(token string) string {
	return envVarPattern.ReplaceAllStringFunc(token, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// Resolve returns the integration entry whose host equals the given host
// exactly. There is no partial or subdomain matching.
func (r *Registry) Resolve(host string) (*Entry, error) {
	entry, ok := r.byHost[host]
	if !ok {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("No matching integration configuration for host %s", host),
			"The host is not listed in the integrations file",
			"Add an integration entry for this host, or fix the repoUrl",
			fmt.Errorf("No matching integration configuration for host %s, please check your integrations config", host),
		)
	}
	return entry, nil
}

// Hosts returns the number of configured integrations.
func (r *Registry) Hosts() int {
	return len(r.byHost)
}

// SelectToken applies the credential precedence rule: an explicit per-call
// token wins over the integration's stored token. When neither is present the
// publish cannot be authorized and fails here, before any remote call.
func SelectToken(override string, entry *Entry) (string, error) {
	if override != "" {
		return override, nil
	}
	if entry.Token != "" {
		return entry.Token, nil
	}
	return "", apperrors.NewAuthError(
		fmt.Sprintf("Authorization has not been provided for %s", entry.Host),
		"Neither the task nor the integration entry carries a token",
		"Add a token to the integration entry, or pass one with the task",
		fmt.Errorf("Authorization has not been provided for %s", entry.Host),
	)
}
