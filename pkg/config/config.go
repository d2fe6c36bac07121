// Package config loads HuskyCat's project configuration file
// (.huskycat.yml) and resolves it against CLI flags and environment
// variables using the precedence spec.md §9 fixes: CLI flag > env var >
// config file > built-in default.
package config

import (
	"os"
	"path/filepath"

	goyaml "github.com/goccy/go-yaml"

	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/huskyerr"
	"github.com/huskycat-dev/huskycat/pkg/logger"
)

var configLog = logger.New("huskycat:config")

// ProjectConfig is the shape of .huskycat.yml. Every field is optional;
// a zero value means "not set in the file", letting Resolve tell that
// apart from an explicit false/zero the file actually specified where
// it matters (FailFast, NoColor, which are pointers for that reason).
type ProjectConfig struct {
	Mode       string   `yaml:"mode"`
	Tools      []string `yaml:"tools"`
	MaxWorkers int      `yaml:"max_workers"`
	FailFast   *bool    `yaml:"fail_fast"`
	NoColor    *bool    `yaml:"no_color"`
	CacheRoot  string   `yaml:"cache_root"`
}

// Find locates the project config file, honoring EnvConfigPath first
// and otherwise searching dir for each of constants.ConfigFileNames in
// order. Returns "" if nothing is found, which is not an error: an
// absent config file means every setting falls back to its default.
func Find(dir string, getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if explicit := getenv(constants.EnvConfigPath); explicit != "" {
		return explicit
	}
	for _, name := range constants.ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load reads and parses path. An empty path returns a zero-value
// ProjectConfig (every setting falls through to env/default), not an
// error.
func Load(path string) (*ProjectConfig, error) {
	if path == "" {
		return &ProjectConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, huskyerr.New(huskyerr.KindConfig, "config.Load", err)
	}
	var cfg ProjectConfig
	if err := goyaml.Unmarshal(data, &cfg); err != nil {
		return nil, huskyerr.New(huskyerr.KindConfig, "config.Load: parse "+path, err)
	}
	configLog.Printf("loaded project config from %s", path)
	return &cfg, nil
}
