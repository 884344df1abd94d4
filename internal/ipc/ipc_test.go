package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postpilot/internal/api"
	"postpilot/internal/credentials"
	"postpilot/internal/daemon"
	"postpilot/internal/dispatch"
	"postpilot/internal/ipc"
	"postpilot/internal/logging"
	"postpilot/internal/platform"
	"postpilot/internal/scheduler"
	"postpilot/internal/sentiment"
	"postpilot/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	dispatcher := dispatch.New(store, platform.NewRegistry(), credentials.Static{}, nil, dispatch.DefaultPolicy(), logger)
	manager := scheduler.NewManager(cfg, store, dispatcher, logger)
	d, err := daemon.New(cfg, store, logger, manager, nil, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "postpilot.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() { srv.Close() })

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	start, err := client.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !start.Started {
		t.Fatalf("start = %+v", start)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || !status.Scheduler {
		t.Fatalf("status = %+v", status)
	}

	scheduled, err := client.PostSchedule(ipc.PostScheduleRequest{Post: api.CreatePostRequest{
		Platform:      "facebook",
		Content:       "hello from ipc",
		ScheduledTime: "2030-09-01 10:00",
		Timezone:      "UTC",
	}})
	if err != nil {
		t.Fatalf("PostSchedule: %v", err)
	}
	if scheduled.Post.ID == 0 || scheduled.Post.State != "scheduled" {
		t.Fatalf("scheduled = %+v", scheduled.Post)
	}

	// Validation failures surface as RPC errors.
	if _, err := client.PostSchedule(ipc.PostScheduleRequest{Post: api.CreatePostRequest{
		Platform:      "myspace",
		Content:       "nope",
		ScheduledTime: "2030-09-01 10:00",
	}}); err == nil {
		t.Fatal("invalid platform accepted")
	}

	list, err := client.PostList(ipc.PostListRequest{States: []string{"scheduled"}})
	if err != nil {
		t.Fatalf("PostList: %v", err)
	}
	if len(list.Posts) != 1 {
		t.Fatalf("posts = %d", len(list.Posts))
	}

	describe, err := client.PostDescribe(scheduled.Post.ID)
	if err != nil {
		t.Fatalf("PostDescribe: %v", err)
	}
	if describe.Post.Content != "hello from ipc" || len(describe.Results) != 0 {
		t.Fatalf("describe = %+v", describe)
	}

	canceled, err := client.PostCancel(scheduled.Post.ID)
	if err != nil {
		t.Fatalf("PostCancel: %v", err)
	}
	if canceled.Post.State != "canceled" {
		t.Fatalf("canceled = %+v", canceled.Post)
	}
	// A second cancel conflicts.
	if _, err := client.PostCancel(scheduled.Post.ID); err == nil {
		t.Fatal("double cancel accepted")
	}

	calendar, err := client.Calendar(2030, 9)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if calendar.Year != 2030 || calendar.Month != 9 {
		t.Fatalf("calendar = %+v", calendar)
	}

	analytics, err := client.Analytics(7, nil)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if analytics.Sentiment.Total != 0 {
		t.Fatalf("analytics = %+v", analytics)
	}

	// A supplied comment set overrides the platform-response source.
	analytics, err = client.Analytics(7, sentiment.SampleComments())
	if err != nil {
		t.Fatalf("Analytics with comments: %v", err)
	}
	if analytics.Sentiment.Total != 5 || analytics.Sentiment.Positive != 1 || analytics.Sentiment.Negative != 1 {
		t.Fatalf("sentiment = %+v", analytics.Sentiment)
	}

	exportPath := filepath.Join(cfg.Paths.LogDir, "history.csv")
	export, err := client.Export(exportPath)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.Count != 1 || export.Path != exportPath {
		t.Fatalf("export = %+v", export)
	}

	health, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth: %v", err)
	}
	if !health.DatabaseExists || !health.IntegrityCheck {
		t.Fatalf("health = %+v", health)
	}

	removed, err := client.PostRemove(scheduled.Post.ID)
	if err != nil || !removed.Removed {
		t.Fatalf("PostRemove = %+v, %v", removed, err)
	}

	notify, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if notify.Sent {
		t.Fatalf("notification sent without topic: %+v", notify)
	}

	stop, err := client.Stop()
	if err != nil || !stop.Stopped {
		t.Fatalf("Stop = %+v, %v", stop, err)
	}
}
