package main

import (
	"context"
	"flag"
)

var SyncCommand = _syncCommand{
	Name:        "sync",
	Description: "Run one sync pass with the configured calendars",
}

type _syncCommand struct {
	Name        string
	Description string
}

func (s _syncCommand) Run(ctx context.Context, args []string) error {
	var force bool

	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	fs.Usage = commandUsage(fs)
	fs.BoolVar(&force, "force", false, "run the import stage even if its interval has not elapsed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}

	syncer := env.newSyncer()
	if force {
		return syncer.ForceSync(ctx)
	}
	return syncer.PerformAutoSync(ctx)
}
