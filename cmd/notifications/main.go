package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/vehicle-records-api/internal/models"
	"github.com/noah-isme/vehicle-records-api/internal/repository"
	"github.com/noah-isme/vehicle-records-api/internal/service"
	"github.com/noah-isme/vehicle-records-api/pkg/config"
	"github.com/noah-isme/vehicle-records-api/pkg/database"
	"github.com/noah-isme/vehicle-records-api/pkg/logger"
	"github.com/noah-isme/vehicle-records-api/pkg/sms"
)

const usage = `usage: notifications <command> [flags]

commands:
  send-expiries   send SMS reminders for documents expiring after the lookahead window
`

type scanOptions struct {
	today     time.Time
	lookahead int
	dryRun    bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "send-expiries":
		os.Exit(sendExpiries(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

func sendExpiries(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	opts, err := parseScanArgs(args, time.Now().In(cfg.Location), cfg.Reminders.LookaheadDays, os.Stderr)
	if err != nil {
		return 2
	}

	logr, err := logger.New(cfg, "notifications")
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Error("failed to connect database", zap.Error(err))
		return 1
	}
	defer db.Close()

	var gateway service.TextMessageSender
	if opts.dryRun {
		gateway = sms.NewDryRunSender(logr.Named("sms"))
	} else {
		gateway = sms.NewClient(sms.Config{
			URL:          cfg.SMS.URL,
			APIKey:       cfg.SMS.APIKey,
			APIKeyHeader: cfg.SMS.APIKeyHeader,
			Timeout:      cfg.SMS.Timeout,
		}, logr.Named("sms"))
	}

	notifier := service.NewExpiryNotifier(repository.NewDocumentRepository(db), gateway, nil, logr, service.ExpiryNotifierConfig{
		LookaheadDays: opts.lookahead,
		CountryCode:   cfg.SMS.CountryCode,
	})

	summary, err := notifier.RunDailyScan(ctx, opts.today)
	printSummary(os.Stdout, summary)
	if err != nil {
		logr.Error("expiry scan incomplete", zap.Error(err))
		return 1
	}
	return 0
}

func parseScanArgs(args []string, now time.Time, defaultLookahead int, stderr io.Writer) (scanOptions, error) {
	fs := flag.NewFlagSet("send-expiries", flag.ContinueOnError)
	fs.SetOutput(stderr)
	date := fs.String("date", "", "scan as if today were this date (YYYY-MM-DD)")
	lookahead := fs.Int("lookahead", defaultLookahead, "days ahead of today to match expiry dates")
	dryRun := fs.Bool("dry-run", false, "log messages instead of sending them")
	if err := fs.Parse(args); err != nil {
		return scanOptions{}, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(stderr, err)
		return scanOptions{}, err
	}
	if *lookahead < 0 {
		err := errors.New("-lookahead must not be negative")
		fmt.Fprintln(stderr, err)
		return scanOptions{}, err
	}

	opts := scanOptions{today: now, lookahead: *lookahead, dryRun: *dryRun}
	if *date != "" {
		parsed, err := time.Parse(models.DateLayout, *date)
		if err != nil {
			err = fmt.Errorf("invalid -date %q, expected YYYY-MM-DD", *date)
			fmt.Fprintln(stderr, err)
			return scanOptions{}, err
		}
		opts.today = parsed
	}
	return opts, nil
}

func printSummary(w io.Writer, summary *models.ScanSummary) {
	if summary == nil {
		return
	}
	fmt.Fprintf(w, "run %s: reminders for %s\n", summary.RunID, summary.Target.Format(models.DateLayout))
	for _, k := range summary.Kinds {
		line := fmt.Sprintf("  %-16s selected=%d sent=%d failed=%d skipped=%d", k.Kind, k.Selected, k.Sent, k.Failed, k.Skipped)
		if k.Error != "" {
			line += " error=" + k.Error
		}
		fmt.Fprintln(w, line)
	}
}
