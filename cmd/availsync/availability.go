package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/stagecall/availsync"
	"github.com/stagecall/availsync/internal/availability"
)

var AvailabilityCommand = _availabilityCommand{
	Name:        "availability",
	Description: "Edit the availability entered by hand",
}

type _availabilityCommand struct {
	Name        string
	Description string
}

func (s _availabilityCommand) Run(ctx context.Context, args []string) error {
	var (
		dates    Strings
		mode     string
		slots    string
		gaps     bool
		clear    bool
		del      bool
		show     bool
		timezone string
	)

	fs := flag.NewFlagSet(s.Name, flag.ExitOnError)
	fs.Usage = commandUsage(fs)
	fs.Var(&dates, "date", "date to edit (e.g. 2026-08-28), repeatable")
	fs.StringVar(&mode, "mode", "", "free, busy or custom")
	fs.StringVar(&slots, "slots", "", `custom slots (e.g. "09:00-12:00,14:00-17:30")`)
	fs.BoolVar(&gaps, "gaps", false, "show the free gaps around the booked slots")
	fs.BoolVar(&clear, "clear", false, "drop local edits for the date")
	fs.BoolVar(&del, "delete", false, "delete the date remotely and locally")
	fs.BoolVar(&show, "show", false, "print the day state without changing it")
	fs.StringVar(&timezone, "timezone", "", "override the configured timezone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(dates) == 0 {
		return fmt.Errorf("at least one -date is required")
	}

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	if timezone == "" {
		timezone = env.cfg.Timezone
	}

	w := flag.CommandLine.Output()
	book := availability.NewBook(w, env.api, timezone)
	if err := book.Load(ctx); err != nil {
		return err
	}

	switch {
	case show:
		for _, date := range dates {
			printDay(w, date, book.DayState(date))
		}
		return nil

	case gaps:
		for _, date := range dates {
			free, err := book.FreeGaps(date)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s free:", date)
			for _, slot := range free {
				fmt.Fprintf(w, " %s-%s", slot.Start, slot.End)
			}
			fmt.Fprintln(w)
		}
		return nil

	case clear:
		for _, date := range dates {
			book.ClearDay(date)
		}

	case del:
		for _, date := range dates {
			if err := book.DeleteDay(ctx, date); err != nil {
				return err
			}
		}
		return nil

	default:
		state, err := stateFromFlags(mode, slots)
		if err != nil {
			return err
		}
		if err := book.ApplyToDates(dates, state); err != nil {
			return err
		}
	}

	if err := book.Save(ctx, availsync.Today()); err != nil {
		return err
	}
	for _, date := range dates {
		printDay(w, date, book.DayState(date))
	}
	return nil
}

func stateFromFlags(mode, slots string) (availsync.DayState, error) {
	switch mode {
	case "free":
		return availsync.DayState{Mode: availsync.DayFree, Slots: []availsync.TimeSlot{availsync.AllDaySlot()}}, nil
	case "busy":
		return availsync.DayState{Mode: availsync.DayBusy, Slots: []availsync.TimeSlot{availsync.AllDaySlot()}}, nil
	case "custom":
	case "":
		return availsync.DayState{}, fmt.Errorf("-mode is required (free, busy or custom)")
	default:
		return availsync.DayState{}, fmt.Errorf("invalid mode %q", mode)
	}

	if slots == "" {
		return availsync.DayState{Mode: availsync.DayCustom, Slots: []availsync.TimeSlot{availsync.DefaultSlot()}}, nil
	}
	parsed, err := parseSlots(slots)
	if err != nil {
		return availsync.DayState{}, err
	}
	return availsync.DayState{Mode: availsync.DayCustom, Slots: parsed}, nil
}

func parseSlots(v string) ([]availsync.TimeSlot, error) {
	var out []availsync.TimeSlot
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		start, end, ok := strings.Cut(part, "-")
		if !ok {
			return nil, fmt.Errorf("invalid slot %q, want HH:mm-HH:mm", part)
		}
		out = append(out, availsync.TimeSlot{Start: start, End: end})
	}
	return out, nil
}

func printDay(w io.Writer, date string, state availsync.DayState) {
	fmt.Fprintf(w, "%s %s:", date, state.Mode)
	for _, slot := range state.Slots {
		fmt.Fprintf(w, " %s-%s", slot.Start, slot.End)
	}
	fmt.Fprintln(w)
}
