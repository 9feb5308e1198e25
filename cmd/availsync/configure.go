package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/stagecall/availsync"
)

var ConfigureCommand = _configureCommand{
	Name:        "configure",
	Description: "Authorize calendar access and set up what gets synced",
}

type _configureCommand struct {
	Name        string
	Description string
}

func (s _configureCommand) Run(ctx context.Context, args []string) error {
	var (
		skipLogin      bool
		exportEnabled  bool
		importEnabled  bool
		exportRef      string
		importRefs     Strings
		importInterval string
	)

	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	fs.Usage = commandUsage(fs)
	fs.BoolVar(&skipLogin, "skip-login", false, "keep the stored google authorization")
	fs.BoolVar(&exportEnabled, "export", true, "push rehearsals to the export calendar")
	fs.BoolVar(&importEnabled, "import", true, "pull events from the import calendars as busy time")
	fs.StringVar(&exportRef, "export-calendar", "", `calendar to export rehearsals to (e.g. "google/primary")`)
	fs.Var(&importRefs, "import-calendar", `calendar to import busy events from, repeatable (e.g. "ics/band")`)
	fs.StringVar(&importInterval, "import-interval", string(availsync.IntervalDaily), "manual, hourly, every6h or daily")
	if err := fs.Parse(args); err != nil {
		return err
	}

	interval, err := parseInterval(importInterval)
	if err != nil {
		return err
	}

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	w := flag.CommandLine.Output()

	if !skipLogin {
		googleCal, err := newGoogleClient(ctx, env.storage)
		if err != nil {
			return err
		}
		if googleCal == nil {
			return fmt.Errorf("no google credentials file at %q", opts.GoogleCred)
		}

		tokenJSON, err := googleCal.Login(ctx, func(authURL string) {
			fmt.Fprintf(w, "Go to the following link in your browser\n%s\n", authURL)
		})
		if err != nil {
			return fmt.Errorf("google: logging in: %w", err)
		}
		if err := env.storage.AddAccount(ctx, googleAccountID, string(tokenJSON)); err != nil {
			return fmt.Errorf("saving account: %w", err)
		}
		fmt.Fprintln(w, "Google authorization saved.")
	}

	settings, err := env.storage.Settings(ctx)
	if err != nil {
		return err
	}
	wasImporting := settings.ImportEnabled
	settings.ExportEnabled = exportEnabled && exportRef != ""
	settings.ImportEnabled = importEnabled && len(importRefs) > 0

	if wasImporting && !settings.ImportEnabled {
		// Turning import off removes what it brought in.
		if err := env.newSyncer().DisableImport(ctx); err != nil {
			return err
		}
	}
	if exportRef != "" {
		settings.ExportCalendarRef = exportRef
	}
	if len(importRefs) > 0 {
		settings.ImportCalendarIDs = importRefs
	}
	settings.ImportInterval = interval

	if err := env.storage.SaveSettings(ctx, settings); err != nil {
		return err
	}

	fmt.Fprintf(w, "Export: %v (calendar %q)\n", settings.ExportEnabled, settings.ExportCalendarRef)
	fmt.Fprintf(w, "Import: %v (calendars %v, interval %s)\n", settings.ImportEnabled, settings.ImportCalendarIDs, settings.ImportInterval)
	return nil
}

func parseInterval(v string) (availsync.ImportInterval, error) {
	switch interval := availsync.ImportInterval(v); interval {
	case availsync.IntervalManual, availsync.IntervalHourly, availsync.IntervalEvery6h, availsync.IntervalDaily:
		return interval, nil
	}
	return "", fmt.Errorf("invalid import interval %q", v)
}
