package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"postpilot/internal/ipc"
	"postpilot/internal/sentiment"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	var days int
	var sampleComments bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show delivery and sentiment analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var comments []string
			if sampleComments {
				comments = sentiment.SampleComments()
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Analytics(days, comments)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader(fmt.Sprintf("Analytics (last %d days)", days), colorize) {
					fmt.Fprintln(out, line)
				}

				stateRows := buildPostStatusRows(resp.States)
				if len(stateRows) == 0 {
					fmt.Fprintln(out, "No posts in range")
				} else {
					table := renderTable([]string{"State", "Count"}, stateRows, []columnAlignment{alignLeft, alignRight})
					fmt.Fprintln(out, table)
				}

				if len(resp.Platforms) > 0 {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Platforms", colorize) {
						fmt.Fprintln(out, line)
					}
					rows := make([][]string, 0, len(resp.Platforms))
					for _, platform := range resp.Platforms {
						rows = append(rows, []string{
							stateTitle(platform.Platform),
							strconv.Itoa(platform.Delivered),
							strconv.Itoa(platform.Failed),
							strconv.Itoa(platform.Attempts),
						})
					}
					table := renderTable(
						[]string{"Platform", "Delivered", "Failed", "Attempts"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
					)
					fmt.Fprintln(out, table)
				}

				fmt.Fprintln(out)
				fmt.Fprintf(out, "Attempts: %d, successes: %d, success rate: %.1f%%\n",
					resp.Attempts, resp.Successes, resp.SuccessRate*100)
				if resp.Sentiment.Total > 0 {
					fmt.Fprintf(out, "Sentiment: %d positive, %d neutral, %d negative (%d classified)\n",
						resp.Sentiment.Positive, resp.Sentiment.Neutral, resp.Sentiment.Negative, resp.Sentiment.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Trailing window in days")
	cmd.Flags().BoolVar(&sampleComments, "sample-comments", false, "Classify the built-in sample comment set instead of recorded platform responses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output analytics as JSON")
	return cmd
}
