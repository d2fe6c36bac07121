package main

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huskycat-dev/huskycat/pkg/config"
	"github.com/huskycat-dev/huskycat/pkg/dispatcher"
	"github.com/huskycat-dev/huskycat/pkg/runstore"
	"github.com/huskycat-dev/huskycat/pkg/sidecar"
	"github.com/huskycat-dev/huskycat/pkg/tool"
)

// runtime bundles the collaborators every command needs: the resolved
// configuration, the tool registry (behind a dispatcher that owns
// backend selection), and the run store. Built once per invocation in
// newRuntime so validate, mcp-server, and the history commands all
// construct it the same way.
type runtime struct {
	resolved   config.Resolved
	dispatcher *dispatcher.Dispatcher
	registry   *tool.Registry
	store      *runstore.Store
}

func newRuntime() (*runtime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfgPath := config.Find(cwd, os.Getenv)
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	resolved := config.Resolve(config.Overrides{Mode: modeFlag}, fileCfg, os.Getenv)

	var opts []dispatcher.Option
	if client := maybeSidecarClient(); client != nil {
		opts = append(opts, dispatcher.WithSidecar(client))
	}
	d := dispatcher.NewDefault(opts...)

	return &runtime{
		resolved:   resolved,
		dispatcher: d,
		registry:   d.Registry(),
		store:      runstore.New(cwd),
	}, nil
}

// maybeSidecarClient returns a sidecar client whenever a GPL socket is
// reachable, nil otherwise, so the dispatcher never routes GPL tools
// through a backend it can't confirm is alive.
func maybeSidecarClient() *sidecar.Client {
	client := sidecar.NewClient("")
	if !client.Health() {
		return nil
	}
	return client
}

// walkValidatable returns every regular file under root at least one
// registered tool can handle, skipping VCS and dependency directories.
func walkValidatable(root string, registry *tool.Registry) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "node_modules", ".huskycat":
				return filepath.SkipDir
			}
			return nil
		}
		if len(registry.ForFile(path)) > 0 {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// resolveTools maps adapter.ToolSelection's names to the subset that is
// both registered and currently available, preserving the adapter's
// order. Availability is probed once per invocation, behind
// progress.StartDetecting.
func resolveTools(names []string, registry *tool.Registry, available map[string]bool) []tool.Tool {
	var out []tool.Tool
	for _, name := range names {
		if !available[name] {
			continue
		}
		if t, ok := registry.Lookup(name); ok {
			out = append(out, t)
		}
	}
	return out
}

func availabilitySet(tools []tool.Tool) map[string]bool {
	set := make(map[string]bool, len(tools))
	for _, t := range tools {
		set[t.Name()] = true
	}
	return set
}
