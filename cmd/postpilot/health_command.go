package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"postpilot/internal/ipc"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check post database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Database Health", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Path", statusInfo, resp.DBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Exists", boolKind(resp.DatabaseExists), yesNo(resp.DatabaseExists), colorize))
				fmt.Fprintln(out, renderStatusLine("Readable", boolKind(resp.DatabaseReadable), yesNo(resp.DatabaseReadable), colorize))
				fmt.Fprintln(out, renderStatusLine("Posts table", boolKind(resp.TableExists), yesNo(resp.TableExists), colorize))
				fmt.Fprintln(out, renderStatusLine("Integrity", boolKind(resp.IntegrityCheck), yesNo(resp.IntegrityCheck), colorize))
				fmt.Fprintln(out, renderStatusLine("Total posts", statusInfo, strconv.Itoa(resp.TotalPosts), colorize))
				if resp.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, resp.Error, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output health as JSON")
	return cmd
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
