// Command weekly-reports sends the weekly plan reports once and exits.
// The server sends them on its own schedule; this is for cron jobs and
// for resending a week by hand.
package main

import (
	"alcyxob/fitcoach/internal/app"
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/report"
	"context"
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", ".", "directory with config.yaml and .env")
	at := flag.String("at", "", "report on the week before this date (YYYY-MM-DD), default today")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the run after this long")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	app.SetupLogging(cfg.Log)

	now := time.Now().UTC()
	if *at != "" {
		if now, err = time.Parse(time.DateOnly, *at); err != nil {
			log.Fatalf("invalid -at date: %s", err)
		}
	}

	store, closeStore, err := app.OpenStore(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open store: %s", err)
	}

	sender, err := notify.NewSender(cfg.Mail)
	if err != nil {
		closeStore()
		log.Fatalf("failed to initialize mail sender: %s", err)
	}
	metricsManager := metrics.NewManager("fitcoach", "reports", metrics.SetupPrometheus())
	reporter := report.NewWeeklyReporter(store, notify.NewNotifier(sender, metricsManager), metricsManager)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	sent, err := reporter.Run(ctx, now)
	cancel()
	closeStore()

	if err != nil {
		log.Errorf("weekly reports: %d sent, errors: %s", sent, err)
		os.Exit(1)
	}
	log.Infof("weekly reports: %d sent", sent)
}
