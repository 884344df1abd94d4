package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postpilot/internal/config"
	"postpilot/internal/ipc"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export post history as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve export path: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d posts to %s\n", resp.Count, resp.Path)
				return nil
			})
		},
	}
}
