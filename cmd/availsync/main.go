package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

var opts struct {
	DBFilename string
	ConfigFile string
	GoogleCred string
	Verbose    bool
}

func init() {
	flag.StringVar(&opts.DBFilename, "db", "availsync.db", "sqlite database file")
	flag.StringVar(&opts.ConfigFile, "config", defaultConfigPath(), "configuration file")
	flag.StringVar(&opts.GoogleCred, "google-cred", "credentials.json", "credentials file for google")
	flag.BoolVar(&opts.Verbose, "v", false, "verbose output")
	flag.Usage = usage
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case SyncCommand.Name:
		err = SyncCommand.Run(ctx, args[1:])
	case ConfigureCommand.Name:
		err = ConfigureCommand.Run(ctx, args[1:])
	case WatchCommand.Name:
		err = WatchCommand.Run(ctx, args[1:])
	case AvailabilityCommand.Name:
		err = AvailabilityCommand.Run(ctx, args[1:])
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage: %s [options] <command> [command options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintf(w, "  %-14s %s\n", SyncCommand.Name, SyncCommand.Description)
	fmt.Fprintf(w, "  %-14s %s\n", ConfigureCommand.Name, ConfigureCommand.Description)
	fmt.Fprintf(w, "  %-14s %s\n", WatchCommand.Name, WatchCommand.Description)
	fmt.Fprintf(w, "  %-14s %s\n", AvailabilityCommand.Name, AvailabilityCommand.Description)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "availsync.yaml"
	}
	return dir + "/availsync/config.yaml"
}
