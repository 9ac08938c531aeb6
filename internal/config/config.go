package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	URL       string   `mapstructure:"url"`
	Email     string   `mapstructure:"email"`
	Token     string   `mapstructure:"token"`
	PagesDir  string   `mapstructure:"pages_dir"`
	IndexFile string   `mapstructure:"index_file"`
	Workers   int      `mapstructure:"workers"`
	Spaces    []string `mapstructure:"spaces"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	loadDotEnv()

	viper.SetDefault("url", "")
	viper.SetDefault("email", "")
	viper.SetDefault("token", "")
	viper.SetDefault("pages_dir", "pages")
	viper.SetDefault("index_file", "page-index.json")
	viper.SetDefault("workers", 10)
	viper.SetDefault("spaces", []string{"POL", "COMPLY"})

	viper.SetConfigName("conflu")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "conflu"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CONFLU")
	viper.AutomaticEnv()

	// Credentials are accepted under either vendor prefix
	viper.BindEnv("url", "ATLASSIAN_URL", "CONFLUENCE_URL")
	viper.BindEnv("email", "ATLASSIAN_EMAIL", "CONFLUENCE_EMAIL")
	viper.BindEnv("token", "ATLASSIAN_TOKEN", "CONFLUENCE_TOKEN")

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// loadDotEnv merges KEY=VALUE pairs from a local .env file into the
// process environment. Values from .env take precedence.
func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		os.Setenv(strings.TrimSpace(key), strings.TrimSpace(value))
	}
}

// Credentials returns the base URL, email, and API token, or an error
// naming whichever of the three is missing.
func Credentials() (url, email, token string, err error) {
	url = GetURL()
	email = GetEmail()
	token = GetToken()

	var missing []string
	if url == "" {
		missing = append(missing, "ATLASSIAN_URL")
	}
	if email == "" {
		missing = append(missing, "ATLASSIAN_EMAIL")
	}
	if token == "" {
		missing = append(missing, "ATLASSIAN_TOKEN")
	}
	if len(missing) > 0 {
		return "", "", "", fmt.Errorf("missing %s (set them in .env, conflu.yaml, or the environment)",
			strings.Join(missing, ", "))
	}
	return url, email, token, nil
}

// GetURL returns the Confluence base URL without a trailing slash
func GetURL() string {
	return strings.TrimRight(viper.GetString("url"), "/")
}

// GetEmail returns the account email used for API authentication
func GetEmail() string {
	return viper.GetString("email")
}

// GetToken returns the API token
func GetToken() string {
	return viper.GetString("token")
}

// GetPagesDir returns the local pages directory with tilde expansion
func GetPagesDir() string {
	return expandTilde(viper.GetString("pages_dir"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetIndexFile returns the page index file path with tilde expansion
func GetIndexFile() string {
	return expandTilde(viper.GetString("index_file"))
}

// GetWorkers returns the parallel download worker count
func GetWorkers() int {
	if n := viper.GetInt("workers"); n > 0 {
		return n
	}
	return 10
}

// GetSpaces returns the default space keys for index and sync
func GetSpaces() []string {
	return viper.GetStringSlice("spaces")
}
