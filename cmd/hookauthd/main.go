// hookauthd runs the authenticated content-ingestion endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillcms/hookauth/internal/auth"
	"github.com/quillcms/hookauth/internal/config"
	"github.com/quillcms/hookauth/internal/log"
	"github.com/quillcms/hookauth/internal/webhook"
)

const version = "0.1.0"

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "start":
		return runStart(args)
	case "check":
		return runCheck(args)
	case "version":
		fmt.Printf("hookauthd version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Print(`hookauthd - Authenticated webhook ingest endpoint

Usage:
  hookauthd <command> [flags]

Commands:
  start     Start the ingest server in foreground
  check     Validate the configuration and exit
  version   Print version
  help      Show this help

Flags:
  --config  Path to configuration file (default: config.yaml)
`)
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := log.WithComponent("main")

	creds := auth.Credentials{
		APIKey:       cfg.Auth.APIKey,
		SharedSecret: []byte(cfg.Auth.SharedSecret),
	}
	logger.Info("hookauthd starting",
		"version", version,
		"config", *configPath,
		"secret_fingerprint", creds.Fingerprint(),
	)

	maxSkew := time.Duration(cfg.Auth.MaxSkewMS) * time.Millisecond

	var replays auth.ReplayGuard = auth.NopReplayGuard{}
	if *cfg.Auth.ReplayGuard {
		replays = auth.NewReplayGuard(maxSkew)
	} else {
		logger.Warn("replay guard disabled; identical requests inside the freshness window will be accepted twice")
	}
	defer replays.Stop()

	authn, err := auth.New(auth.Config{
		Credentials: creds,
		Replays:     replays,
		MaxSkew:     maxSkew,
	})
	if err != nil {
		logger.Error("failed to build authenticator", "error", err)
		return 1
	}

	maxBody, err := config.ParseMaxBodySize(cfg.Ingest.MaxBodySize)
	if err != nil {
		logger.Error("invalid max body size", "error", err)
		return 1
	}

	sink := webhook.SinkFunc(func(ctx context.Context, sub webhook.Submission) error {
		// Hand-off point for the CMS ingestion pipeline. The reference
		// deployment consumes submissions downstream; here we only confirm
		// receipt.
		log.WithComponent("sink").Info("submission received",
			"submission_id", sub.ID,
			"bytes", len(sub.Payload),
		)
		return nil
	})

	server := webhook.New(webhook.Config{
		Listen:      cfg.Listen,
		Path:        cfg.Ingest.Path,
		MaxBodySize: maxBody,
	}, authn, sink, log.WithComponent("webhook"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("ingest server exited", "error", err)
		return 1
	}

	logger.Info("hookauthd stopped")
	return 0
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check failed: %v\n", err)
		return 1
	}

	fmt.Printf("Config OK: listen=%s path=%s max_skew_ms=%d replay_guard=%t\n",
		cfg.Listen, cfg.Ingest.Path, cfg.Auth.MaxSkewMS, *cfg.Auth.ReplayGuard)
	return 0
}
