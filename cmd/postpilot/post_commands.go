package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"postpilot/internal/api"
	"postpilot/internal/ipc"
)

func newPostCommand(ctx *commandContext) *cobra.Command {
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Schedule and manage posts",
	}

	postCmd.AddCommand(newPostScheduleCommand(ctx))
	postCmd.AddCommand(newPostListCommand(ctx))
	postCmd.AddCommand(newPostShowCommand(ctx))
	postCmd.AddCommand(newPostPromoteCommand(ctx))
	postCmd.AddCommand(newPostCancelCommand(ctx))
	postCmd.AddCommand(newPostRetryCommand(ctx))
	postCmd.AddCommand(newPostRemoveCommand(ctx))
	postCmd.AddCommand(newPostClearDeliveredCommand(ctx))

	return postCmd
}

func newPostScheduleCommand(ctx *commandContext) *cobra.Command {
	var req api.CreatePostRequest
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a new post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostSchedule(ipc.PostScheduleRequest{Post: req})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Post)
				}
				out := cmd.OutOrStdout()
				if resp.Post.State == "draft" {
					fmt.Fprintf(out, "Saved draft %d for %s\n", resp.Post.ID, resp.Post.PlatformName)
					return nil
				}
				fmt.Fprintf(out, "Scheduled post %d for %s at %s\n", resp.Post.ID, resp.Post.PlatformName, resp.Post.LocalTime)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Platform, "platform", "p", "", "Target platform (facebook, twitter, instagram, linkedin, tiktok, snapchat)")
	cmd.Flags().StringVar(&req.Content, "content", "", "Post content")
	cmd.Flags().StringVar(&req.MediaPath, "media", "", "Path to an attached image (.jpg or .png)")
	cmd.Flags().StringVarP(&req.ScheduledTime, "time", "t", "", "Scheduled time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&req.Timezone, "timezone", "", "IANA timezone for the scheduled time (defaults to the configured display timezone)")
	cmd.Flags().BoolVar(&req.Draft, "draft", false, "Save as a draft instead of scheduling")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("content")
	_ = cmd.MarkFlagRequired("time")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the created post as JSON")
	return cmd
}

func newPostListCommand(ctx *commandContext) *cobra.Command {
	var listStates []string
	var listPlatform string
	var listLimit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostList(ipc.PostListRequest{
					States:   listStates,
					Platform: listPlatform,
					Limit:    listLimit,
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				if len(resp.Posts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No posts found")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Platform", "Scheduled", "State", "Attempts", "Content"},
					buildPostListRows(resp.Posts),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStates, "state", "s", nil, "Filter by post state (repeatable)")
	cmd.Flags().StringVarP(&listPlatform, "platform", "p", "", "Filter by platform")
	cmd.Flags().IntVar(&listLimit, "limit", 0, "Limit the number of posts returned")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output posts as JSON")
	return cmd
}

func newPostShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post and its delivery history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostDescribe(id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				printPostDetail(out, resp.Post)
				if len(resp.Results) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Delivery attempts:")
				rows := make([][]string, 0, len(resp.Results))
				for _, result := range resp.Results {
					outcome := "failed"
					if result.Success {
						outcome = "delivered"
					}
					detail := result.RemoteID
					if !result.Success {
						detail = result.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.Itoa(result.Attempt),
						result.CreatedAt,
						outcome,
						detail,
					})
				}
				table := renderTable(
					[]string{"Attempt", "At", "Outcome", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the post as JSON")
	return cmd
}

func printPostDetail(out io.Writer, post api.Post) {
	fmt.Fprintf(out, "Post %d (%s)\n", post.ID, post.PlatformName)
	fmt.Fprintf(out, "  State:      %s\n", stateTitle(post.State))
	fmt.Fprintf(out, "  Scheduled:  %s\n", post.LocalTime)
	if post.Timezone != "" {
		fmt.Fprintf(out, "  Timezone:   %s\n", post.Timezone)
	}
	if post.MediaPath != "" {
		fmt.Fprintf(out, "  Media:      %s\n", post.MediaPath)
	}
	if post.RecurringName != "" {
		fmt.Fprintf(out, "  Recurring:  %s\n", post.RecurringName)
	}
	fmt.Fprintf(out, "  Attempts:   %d\n", post.AttemptCount)
	if post.NextAttemptAt != "" {
		fmt.Fprintf(out, "  Next try:   %s\n", post.NextAttemptAt)
	}
	if post.RemoteID != "" {
		fmt.Fprintf(out, "  Remote ID:  %s\n", post.RemoteID)
	}
	if post.LastError != "" {
		fmt.Fprintf(out, "  Last error: %s\n", post.LastError)
	}
	fmt.Fprintf(out, "  Content:    %s\n", post.Content)
}

func newPostPromoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <id>",
		Short: "Move a draft into the delivery schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostPromote(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d scheduled for %s\n", resp.Post.ID, resp.Post.LocalTime)
				return nil
			})
		},
	}
}

func newPostCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a draft or scheduled post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostCancel(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d canceled\n", resp.Post.ID)
				return nil
			})
		},
	}
}

func newPostRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Reschedule a failed post with a fresh attempt budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostRetry(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d rescheduled for %s\n", resp.Post.ID, resp.Post.LocalTime)
				return nil
			})
		},
	}
}

func newPostRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a post and its delivery history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PostRemove(id)
				if err != nil {
					return err
				}
				if !resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Post %d not found\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d removed\n", id)
				return nil
			})
		},
	}
}

func newPostClearDeliveredCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-delivered",
		Short: "Remove delivered posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ClearDelivered()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d delivered posts\n", resp.Removed)
				return nil
			})
		},
	}
}

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}
