package config

import (
	"os"
	"strconv"

	"github.com/huskycat-dev/huskycat/pkg/constants"
)

// Overrides carries the CLI flags that, when set, outrank everything
// else. Pointer fields distinguish "flag not given" from "flag given as
// the zero value" (e.g. `--max-workers 0` is nonsensical but `--mode`
// unset must not silently mean "mode: \"\"").
type Overrides struct {
	Mode       string
	MaxWorkers *int
	NoColor    *bool
}

// Resolved is the final, fully-resolved set of settings pkg/mode and
// the executor read, after applying CLI flag > env var > config file >
// built-in default precedence to each field independently.
type Resolved struct {
	Mode       string
	Tools      []string
	MaxWorkers int
	FailFast   bool
	NoColor    bool
	CacheRoot  string
}

const defaultMaxWorkers = 8

// Resolve applies the precedence chain field by field. getenv defaults
// to os.Getenv; tests inject a map lookup instead.
func Resolve(overrides Overrides, file *ProjectConfig, getenv func(string) string) Resolved {
	if getenv == nil {
		getenv = os.Getenv
	}
	if file == nil {
		file = &ProjectConfig{}
	}

	r := Resolved{
		MaxWorkers: defaultMaxWorkers,
		CacheRoot:  constants.DefaultCacheRoot,
	}

	// Mode: CLI flag > HUSKYCAT_MODE > file > unset (pkg/mode.Detect
	// then runs autodetection; config.Resolve never guesses a mode of
	// its own).
	switch {
	case overrides.Mode != "":
		r.Mode = overrides.Mode
	case getenv(constants.EnvMode) != "":
		r.Mode = getenv(constants.EnvMode)
	case file.Mode != "":
		r.Mode = file.Mode
	}

	// MaxWorkers: CLI flag > HUSKYCAT_MAX_WORKERS > file > default.
	switch {
	case overrides.MaxWorkers != nil:
		r.MaxWorkers = *overrides.MaxWorkers
	case getenv(constants.EnvMaxWorkers) != "":
		if n, err := strconv.Atoi(getenv(constants.EnvMaxWorkers)); err == nil && n > 0 {
			r.MaxWorkers = n
		}
	case file.MaxWorkers > 0:
		r.MaxWorkers = file.MaxWorkers
	}

	// FailFast has no CLI flag or env var in spec.md §6's documented
	// surface; only the config file can set it, default false.
	if file.FailFast != nil {
		r.FailFast = *file.FailFast
	}

	// NoColor: CLI flag > HUSKYCAT_NO_COLOR/NO_COLOR > file > default false.
	switch {
	case overrides.NoColor != nil:
		r.NoColor = *overrides.NoColor
	case getenv(constants.EnvNoColor) != "" || getenv("NO_COLOR") != "":
		r.NoColor = true
	case file.NoColor != nil:
		r.NoColor = *file.NoColor
	}

	// CacheRoot: HUSKYCAT_HOME > file > default (no dedicated CLI flag).
	switch {
	case getenv(constants.EnvCacheRoot) != "":
		r.CacheRoot = getenv(constants.EnvCacheRoot)
	case file.CacheRoot != "":
		r.CacheRoot = file.CacheRoot
	}

	r.Tools = file.Tools

	return r
}
