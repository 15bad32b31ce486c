package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"couplecal/internal/config"
	"couplecal/internal/holiday"
	"couplecal/internal/ics"
	appLog "couplecal/internal/log"
	"couplecal/internal/reminder"
	"couplecal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	envFile    string
	listen     string
	once       bool
	verify     bool
}

func main() {
	appLog.Info("couplecal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv(flags.envFile)

	// CLI --listen overrides config file and environment.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if lvl, ok := appLog.ParseLevel(conf.LogLevel); ok {
		appLog.SetLevel(lvl)
	}

	loc := conf.Location()
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"reminder_cron", conf.ReminderCron,
		"reminder_days", conf.ReminderDays,
		"feed_years", conf.FeedYears,
		"basic_auth", conf.BasicAuth != nil,
		"once", flags.once,
		"verify", flags.verify,
	)

	now := time.Now().In(loc)

	if flags.verify {
		if err := verifyFeed(now, conf.FeedYears, loc); err != nil {
			appLog.Error("feed verification failed", err)
			os.Exit(1)
		}
		appLog.Info("feed verification passed")
		return
	}

	if flags.once {
		printUpcoming(os.Stdout, now)
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	reminders, err := reminder.New(conf.ReminderCron, conf.ReminderDays, loc)
	if err != nil {
		appLog.Error("failed to create reminder scheduler", err, "spec", conf.ReminderCron)
		os.Exit(1)
	}
	reminders.Start(ctx)

	srv := web.NewServer(conf, web.WithReminders(reminders))
	if err := srv.ListenAndServe(ctx); err != nil {
		appLog.Error("http server failed", err, "listen", conf.Listen)
		cancel()
		reminders.Stop()
		os.Exit(1)
	}

	reminders.Stop()
	appLog.Info("couplecal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/couplecal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.envFile, "env-file", ".env", "Optional dotenv file with COUPLECAL_* overrides")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print upcoming holidays and exit")
	flag.BoolVar(&cfg.verify, "verify", false, "Check the ICS feed against the holiday schedule and exit")

	flag.Parse()

	return cfg
}

func verifyFeed(now time.Time, years int, loc *time.Location) error {
	return ics.Verify(ics.FeedConfig{
		Location: loc,
		FromYear: now.Year(),
		ToYear:   now.Year() + years - 1,
		Stamp:    now,
	})
}

func printUpcoming(w io.Writer, now time.Time) {
	for _, occ := range holiday.Upcoming(now) {
		fmt.Fprintf(w, "%s  %-16s %s  (in %d days)\n",
			occ.Date.Format("2006-01-02 Mon"),
			occ.Holiday.Name,
			occ.Holiday.Emoji,
			occ.DaysUntil(now),
		)
	}
}
