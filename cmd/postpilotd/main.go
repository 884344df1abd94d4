// Command postpilotd runs the postpilot daemon in the foreground. It is
// the systemd-friendly entry point; `postpilot start` launches the same
// runtime through the hidden `postpilot daemon` subcommand instead.
package main

import (
	"context"
	"log"

	"postpilot/internal/config"
	"postpilot/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
