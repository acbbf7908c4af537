package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// UserConfigDir is the directory, relative to the home directory, of the
	// user-level config.
	UserConfigDir = ".config/docfile"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// ProjectConfigFiles are the names of project-level config files, in order
// of preference.
var ProjectConfigFiles = []string{".docfile.yaml", ".docfile.yml", ".docfile.toml"}

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
	home   string
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &Loader{logger: logger, home: home}
}

// Load loads configuration with layered precedence:
//  1. Default config
//  2. User config (~/.config/docfile/config.yaml)
//  3. Project config (.docfile.yaml or .docfile.toml in startDir or the
//     nearest parent directory that has one)
//
// The result is not validated, since command-line flags are usually merged
// in afterwards.
func (l *Loader) Load(startDir string) (*Config, error) {
	config := DefaultConfig()

	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		userConfig, err := decodeFile(userConfigPath)
		switch {
		case err == nil:
			l.logger.Debug("loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	projectConfigPath, ok, err := FindProjectConfig(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		l.logger.Debug("no project config found")
		return config, nil
	}
	projectConfig, err := decodeFile(projectConfigPath)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded project config", slog.String("path", projectConfigPath))
	config.Merge(projectConfig)
	return config, nil
}

// LoadFile loads the defaults overlaid with a single, explicitly named
// config file.
func (l *Loader) LoadFile(path string) (*Config, error) {
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded config", slog.String("path", path))
	return config, nil
}

func (l *Loader) userConfigPath() string {
	if l.home == "" {
		return ""
	}
	return filepath.Join(l.home, UserConfigDir, UserConfigFile)
}

// FindProjectConfig walks up from startDir to locate a project config file.
func FindProjectConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range ProjectConfigFiles {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
