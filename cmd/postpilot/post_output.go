package main

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"postpilot/internal/api"
	"postpilot/internal/ipc"
	"postpilot/internal/poststore"
)

var titleCaser = cases.Title(language.Und)

func stateTitle(state string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(state)))
}

func daemonStatusLines(status *ipc.StatusResponse, colorize bool) []string {
	lines := make([]string, 0, 8)

	runningKind := statusError
	runningMsg := "daemon is not running"
	if status.Running {
		runningKind = statusOK
		runningMsg = "daemon is running"
		if status.PID > 0 {
			runningMsg = fmt.Sprintf("daemon is running (pid %d)", status.PID)
		}
	}
	lines = append(lines, renderStatusLine("Daemon", runningKind, runningMsg, colorize))

	if status.DBPath != "" {
		lines = append(lines, renderStatusLine("Database", statusInfo, status.DBPath, colorize))
	}

	schedulerKind := statusWarn
	schedulerMsg := "delivery loop stopped"
	if status.Scheduler {
		schedulerKind = statusOK
		schedulerMsg = "delivery loop running"
		if status.LastPoll != "" {
			schedulerMsg = fmt.Sprintf("delivery loop running (last poll %s)", status.LastPoll)
		}
	}
	lines = append(lines, renderStatusLine("Scheduler", schedulerKind, schedulerMsg, colorize))
	if status.LastError != "" {
		lines = append(lines, renderStatusLine("Last error", statusWarn, status.LastError, colorize))
	}

	inboxKind := statusInfo
	inboxMsg := "disabled"
	if status.InboxActive {
		inboxKind = statusOK
		inboxMsg = "watching for draft files"
	}
	lines = append(lines, renderStatusLine("Inbox", inboxKind, inboxMsg, colorize))
	lines = append(lines, renderStatusLine("Recurring", statusInfo, fmt.Sprintf("%d templates", status.Recurring), colorize))

	return lines
}

func buildPostStatusRows(stats map[string]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, state := range poststore.AllStates() {
		count := stats[string(state)]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{stateTitle(string(state)), strconv.Itoa(count)})
	}
	return rows
}

func buildPostListRows(posts []api.Post) [][]string {
	rows := make([][]string, 0, len(posts))
	for _, post := range posts {
		scheduled := post.LocalTime
		if scheduled == "" {
			scheduled = post.ScheduledAt
		}
		rows = append(rows, []string{
			strconv.FormatInt(post.ID, 10),
			post.PlatformName,
			scheduled,
			stateTitle(post.State),
			strconv.Itoa(post.AttemptCount),
			truncateContent(post.Content, 48),
		})
	}
	return rows
}

func truncateContent(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if limit <= 0 || len(runes) <= limit {
		return content
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
