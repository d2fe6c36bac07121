package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huskycat-dev/huskycat/pkg/console"
	"github.com/huskycat-dev/huskycat/pkg/gitutil"
)

// hookMarker identifies a pre-commit hook this command installed, so a
// second run can tell "already ours, fine to overwrite" apart from "a
// developer's own hook, don't touch it".
const hookMarker = "# installed by huskycat setup-hooks"

const preCommitHookTemplate = `#!/bin/sh
` + hookMarker + `
exec huskycat validate --staged
`

func newSetupHooksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-hooks",
		Short: "Install the pre-commit git hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := gitutil.RepoRoot()
			if err != nil {
				return fmt.Errorf("setup-hooks: not inside a git repository: %w", err)
			}
			path := filepath.Join(root, ".git", "hooks", "pre-commit")

			if existing, err := os.ReadFile(path); err == nil && !strings.Contains(string(existing), hookMarker) {
				return fmt.Errorf("setup-hooks: %s already exists and was not installed by huskycat; remove it first if you want huskycat to manage it", path)
			}

			if err := os.WriteFile(path, []byte(preCommitHookTemplate), 0o755); err != nil {
				return fmt.Errorf("setup-hooks: write %s: %w", path, err)
			}
			fmt.Println(console.FormatSuccessMessage("installed pre-commit hook at " + path))
			return nil
		},
	}
}
