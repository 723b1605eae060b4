// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	// Token is the API credential. Required for the fetch command only;
	// the build command never touches the network.
	Token string

	// Domain is the GitHub host, defaulting to github.com. Any other value
	// is treated as a GitHub Enterprise installation.
	Domain string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
	}

	if config.GitHub.Domain == "" {
		config.GitHub.Domain = "github.com"
	}

	return config, nil
}

// ValidateFetchConfig ensures the configuration required by the fetch
// command is present. Absence of the token is a fatal configuration error
// and is reported before any network call is made.
func ValidateFetchConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// APIBaseURL returns the REST API base URL for the configured domain.
func (c *GitHubConfig) APIBaseURL() string {
	if c.Domain == "github.com" {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", c.Domain)
}
