package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postpilot/internal/ipc"
)

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	var year int
	var month int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the month calendar of posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Calendar(year, month)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Calendar %04d-%02d (%s)", resp.Year, resp.Month, resp.Timezone), colorize) {
					fmt.Fprintln(out, line)
				}
				if len(resp.Days) == 0 {
					fmt.Fprintln(out, "No posts this month")
					return nil
				}
				rows := make([][]string, 0, len(resp.Days))
				for _, day := range resp.Days {
					for _, post := range day.Posts {
						rows = append(rows, []string{
							day.Date,
							fmt.Sprintf("%d", post.ID),
							post.PlatformName,
							stateTitle(post.State),
							truncateContent(post.Content, 40),
						})
					}
				}
				table := renderTable(
					[]string{"Date", "ID", "Platform", "State", "Content"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (defaults to the current year)")
	cmd.Flags().IntVar(&month, "month", 0, "Calendar month 1-12 (defaults to the current month)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the calendar as JSON")
	return cmd
}
