package client

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the feedctl configuration: a TOML file overridden by FEEDCTL_* variables
type Settings struct {
	BaseURL         string
	Timeout         time.Duration
	CredentialsPath string
	LogFile         string
	Output          string
}

// DefaultConfigDir is ~/.config/feedctl
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "feedctl"), nil
}

// LoadSettings reads configPath, or config.toml in the default directory when empty.
// A missing file is not an error.
func LoadSettings(configPath string) (*Settings, error) {
	dir := filepath.Dir(configPath)
	if configPath == "" {
		var err error
		if dir, err = DefaultConfigDir(); err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.toml")
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("feedctl")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("api.base_url", "http://localhost:8787")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("output.format", "text")
	v.SetDefault("credentials.path", filepath.Join(dir, "credentials"))
	v.SetDefault("log.file", filepath.Join(dir, "feedctl.log"))

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return &Settings{
		BaseURL:         v.GetString("api.base_url"),
		Timeout:         time.Duration(v.GetInt("api.timeout")) * time.Second,
		CredentialsPath: expandPath(v.GetString("credentials.path")),
		LogFile:         expandPath(v.GetString("log.file")),
		Output:          v.GetString("output.format"),
	}, nil
}

// expandPath expands a leading ~ to the home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
