package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huskycat-dev/huskycat/pkg/console"
	"github.com/huskycat-dev/huskycat/pkg/runstore"
)

func newLastRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-last-run",
		Short: "Show the most recently completed validation run",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			run, err := rt.store.LastRun()
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Println(console.FormatInfoMessage("no completed runs recorded yet"))
				return nil
			}
			return printRun(*run)
		},
	}
}

func newRunHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "run-history",
		Short: "List past validation runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			runs, err := rt.store.RunHistory(limit)
			if err != nil {
				return err
			}
			if jsonFlag {
				return console.OutputStructOrJSON(runs, true)
			}
			for _, run := range runs {
				if err := printRun(run); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (1-100)")
	return cmd
}

func printRun(run runstore.ValidationRun) error {
	if jsonFlag {
		out, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	status := console.FormatSuccessMessage("passed")
	if !run.Success {
		status = console.FormatErrorMessage("failed")
	}
	fmt.Printf("%s  %s  %d file(s), %d error(s), %d warning(s)\n", run.RunID, status, len(run.Files), run.Errors, run.Warnings)
	return nil
}
