package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/stagecall/availsync"
)

var WatchCommand = _watchCommand{
	Name:        "watch",
	Description: "Keep running and sync on the configured schedule",
}

type _watchCommand struct {
	Name        string
	Description string
}

func (s _watchCommand) Run(ctx context.Context, args []string) error {
	var schedule string

	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	fs.Usage = commandUsage(fs)
	fs.StringVar(&schedule, "schedule", "", "cron schedule, overrides watch_cron from the config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	if schedule == "" {
		schedule = env.cfg.WatchCron
	}

	syncer := env.newSyncer()
	w := flag.CommandLine.Output()

	// First pass right away, then on the schedule. Scheduled passes go
	// through the same trigger path as lifecycle signals, so the
	// cool-down and the import interval gate still apply.
	if err := syncer.PerformAutoSync(ctx); err != nil {
		availsync.Logf(w, "watch:", "", "initial sync failed: %v", err)
	}

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		if _, err := syncer.HandleTrigger(ctx, availsync.TriggerFocus); err != nil {
			availsync.Logf(w, "watch:", "", "scheduled sync failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	availsync.Logf(w, "watch:", "", "watching on schedule %q", schedule)
	c.Start()
	<-ctx.Done()

	// Let an in-flight pass finish before exiting.
	<-c.Stop().Done()
	return ctx.Err()
}
