package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/replay"
	"github.com/nerdyexternal/landing/scroll-controller/internal/trace"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to scroll_trace.db (DB mode)")
	sessionID := flag.String("session", "", "session id to replay (DB mode, default latest)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/scroll_trace.db [--session id]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *sessionID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

func runDBMode(dbPath, sessionID string) int {
	store, err := trace.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	var sess trace.Session
	if sessionID == "" {
		sess, err = store.LatestSession()
	} else {
		sess, err = store.GetSession(sessionID)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load session: %v\n", err)
		return 2
	}

	records, err := store.Events(sess.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load events: %v\n", err)
		return 2
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "no events recorded for session %s\n", sess.ID)
		return 2
	}

	events := make([]coordinator.Event, len(records))
	for i, r := range records {
		events[i] = r.Event
	}

	results := replay.Replay(sess, events, replay.ConfigFor(sess))
	return printComparison(replay.Outcomes(events), results)
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	base := time.Unix(0, 0).UTC()
	sess := f.Session.ToSession(base)
	results := replay.Replay(sess, f.Inputs(base), replay.ConfigFor(sess))
	return printComparison(f.ExpectedResults(), results)
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
// Free and disabled decisions are counted in the summary but never compared.
func printComparison(expected, results []replay.Result) int {
	var compared []replay.Result
	for _, r := range results {
		if r.Kind == replay.KindBuild || r.Kind == replay.KindRefresh || r.Kind == replay.KindSnap {
			compared = append(compared, r)
		}
	}

	fmt.Printf("%-4s| %-24s| %-24s| %s\n", "#", "Expected", "Replayed", "Match")
	fmt.Printf("%-4s+%-25s+%-25s+%s\n",
		"----", "-------------------------", "-------------------------", "------")

	diverged := make(map[int]bool)
	for _, d := range replay.Compare(expected, results) {
		diverged[d.Index] = true
	}

	n := len(expected)
	if len(compared) > n {
		n = len(compared)
	}
	for i := 0; i < n; i++ {
		var e, a *replay.Result
		if i < len(expected) {
			e = &expected[i]
		}
		if i < len(compared) {
			a = &compared[i]
		}
		match := "OK"
		if diverged[i] {
			match = "DIFF"
		}
		fmt.Printf("%-4d| %-24s| %-24s| %s\n", i, describe(e), describe(a), match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d compared, %d diverge\n", n, len(diverged))
	fmt.Printf("Replayed: %d builds, %d refreshes, %d snaps, %d free, %d disabled (final generation %d)\n",
		s.Builds, s.Refreshes, s.Snaps, s.Free, s.Disabled, s.FinalGeneration)

	if len(diverged) > 0 {
		return 1
	}
	return 0
}

func describe(r *replay.Result) string {
	if r == nil {
		return "-"
	}
	if r.Kind == replay.KindSnap {
		return fmt.Sprintf("snap %s@%.0f g%d", r.RegionID, r.Target, r.Generation)
	}
	return fmt.Sprintf("%s g%d", r.Kind, r.Generation)
}

// #endregion output
