// Command huskycat-gpl-sidecar hosts the GPL-licensed validator tools
// (shellcheck, hadolint, yamllint) in a separate process reachable only
// over a Unix-domain-socket JSON-RPC service, so the Apache-2.0 core
// never links GPL code directly.
package main

import (
	"fmt"
	"os"

	"github.com/huskycat-dev/huskycat/pkg/sidecar"
	"github.com/spf13/cobra"
)

var socketPath string

var rootCmd = &cobra.Command{
	Use:   "huskycat-gpl-sidecar",
	Short: "Isolated host process for GPL-licensed validator tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		if socketPath == "" {
			socketPath = "/ipc/huskycat-gpl.sock"
		}
		fmt.Fprintf(os.Stderr, "huskycat-gpl-sidecar: listening on %s\n", socketPath)
		srv := sidecar.NewServer(socketPath)
		return srv.Serve()
	},
}

func init() {
	rootCmd.Flags().StringVar(&socketPath, "socket", "/ipc/huskycat-gpl.sock", "Unix socket path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
