package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stagecall/availsync"
	"github.com/stagecall/availsync/calendar"
	"github.com/stagecall/availsync/calendar/google"
	"github.com/stagecall/availsync/calendar/ics"
	"github.com/stagecall/availsync/internal/config"
	"github.com/stagecall/availsync/internal/remote"
	"github.com/stagecall/availsync/internal/sqlite"
	"github.com/stagecall/availsync/internal/syncer"
)

const googleAccountID = "google/default"

// env bundles the pieces every subcommand needs: configuration, the
// local sqlite state, the availability service client and the calendar
// provider mux.
type env struct {
	cfg     *config.Config
	storage *sqlite.Storage
	api     *remote.Client
	mux     availsync.Mux
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := sql.Open(sqlite.DriverName, opts.DBFilename)
	if err != nil {
		return nil, err
	}
	storage := sqlite.NewStorage(db)

	mux, err := newMux(ctx, storage, cfg)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:     cfg,
		storage: storage,
		api:     remote.NewClient(cfg.API.BaseURL, cfg.API.Token),
		mux:     mux,
	}, nil
}

func (e *env) newSyncer() *syncer.Syncer {
	return syncer.New(flag.CommandLine.Output(), e.mux, e.storage, e.storage, e.storage, e.api, e.api)
}

func newMux(ctx context.Context, storage *sqlite.Storage, cfg *config.Config) (availsync.Mux, error) {
	mux := calendar.NewMux()

	googleCal, err := newGoogleClient(ctx, storage)
	if err != nil {
		return nil, err
	}
	if googleCal != nil {
		mux.Register(google.Platform, googleCal)
	}

	if len(cfg.Feeds) > 0 {
		feeds := make([]ics.Feed, 0, len(cfg.Feeds))
		for _, f := range cfg.Feeds {
			feeds = append(feeds, ics.Feed{ID: f.ID, Name: f.Name, URL: f.URL})
		}
		icsCal := ics.NewClient(feeds)
		icsCal.Verbose = opts.Verbose
		mux.Register(ics.Platform, icsCal)
	}
	return mux, nil
}

// newGoogleClient returns nil without error when no credentials file is
// present, leaving the google platform unregistered.
func newGoogleClient(ctx context.Context, storage *sqlite.Storage) (*google.Client, error) {
	credJSON, err := os.ReadFile(opts.GoogleCred)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	tokenJSON, err := storage.Account(ctx, googleAccountID)
	if err != nil {
		return nil, err
	}

	googleCal, err := google.NewClient(credJSON, []byte(tokenJSON))
	if err != nil {
		return nil, err
	}
	googleCal.Verbose = opts.Verbose
	return googleCal, nil
}

type Strings []string

func (i *Strings) String() string {
	return strings.Join(*i, ", ")
}

func (i *Strings) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func commandUsage(fs *flag.FlagSet) func() {
	return func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage of %s %s:\n", os.Args[0], fs.Name())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
	}
}
