package main

import (
	"github.com/spf13/cobra"

	"github.com/huskycat-dev/huskycat/pkg/mcpserver"
)

func newMCPServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve validation tools to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return mcpserver.Run(cmd.Context(), mcpserver.Deps{
				Registry: rt.registry,
				Store:    rt.store,
			}, version)
		},
	}
}
