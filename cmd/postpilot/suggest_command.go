package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"postpilot/internal/captions"
	"postpilot/internal/platform"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	var platformKey string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <topic>",
		Short: "Suggest a caption and hashtags for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			name, ok := platform.Parse(platformKey)
			if !ok {
				return fmt.Errorf("unknown platform %q", platformKey)
			}

			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("topic is required")
			}

			suggester := captions.NewFromConfig(cfg.Captions)
			suggestion, err := suggester.Suggest(cmd.Context(), topic, name.DisplayName())
			if err != nil {
				return fmt.Errorf("suggest caption: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, suggestion)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, suggestion.Caption)
			if len(suggestion.Hashtags) > 0 {
				fmt.Fprintln(out, strings.Join(suggestion.Hashtags, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformKey, "platform", "p", "twitter", "Platform the caption targets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the suggestion as JSON")
	return cmd
}
