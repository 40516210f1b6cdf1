package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/replay"
	"github.com/nerdyexternal/landing/scroll-controller/internal/trace"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to scroll_trace.db")
	sessionID := flag.String("session", "", "session id to export (default latest)")
	outPath := flag.String("out", "", "output fixture JSON path")
	description := flag.String("description", "", "fixture description (default session label)")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--session id] [--description text]")
		os.Exit(2)
	}

	if err := run(*dbPath, *sessionID, *outPath, *description); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, sessionID, outPath, description string) error {
	store, err := trace.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	var sess trace.Session
	if sessionID == "" {
		sess, err = store.LatestSession()
	} else {
		sess, err = store.GetSession(sessionID)
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	records, err := store.Events(sess.ID)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("session %s has no events", sess.ID)
	}
	events := make([]coordinator.Event, len(records))
	for i, r := range records {
		events[i] = r.Event
	}

	if description == "" {
		description = sess.Label
	}
	if description == "" {
		description = "recorded session " + sess.ID
	}
	return writeFixture(replay.FromSession(sess, events, description), outPath)
}

// #endregion extract

// #region output

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d events, %d expected)\n",
		outPath, len(data), len(fixture.Events), len(fixture.Expected))
	return nil
}

// #endregion output
