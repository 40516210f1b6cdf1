package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/config"
	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/logging"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/scene"
	"github.com/nerdyexternal/landing/scroll-controller/internal/telemetry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/trace"
)

const frameInterval = 16 * time.Millisecond

// #region main
func main() {
	extent := flag.Float64("extent", 3000, "initial scroll extent in px")
	height := flag.Float64("height", 1000, "initial viewport height in px")
	label := flag.String("label", "", "session label stored with the trace")
	flag.Parse()

	if err := run(*extent, *height, *label); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so the trace store and exporter are flushed
// on every path.
func run(extent, height float64, label string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := settings.Coordinator()
	if err != nil {
		return fmt.Errorf("invalid coordinator config: %w", err)
	}
	logger := logging.New(os.Stderr, settings.LogLevel, settings.LogFormat)

	shutdown, err := telemetry.Setup(context.Background(), "scroll-coordinator", settings.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdown(context.Background())

	store, err := trace.NewStore(settings.DB)
	if err != nil {
		return fmt.Errorf("failed to open trace store: %w", err)
	}
	defer store.Close()

	hero := scene.DefaultHeroConfig()
	sess, err := store.CreateSession(trace.Session{
		Label:          label,
		Extent:         extent,
		ViewportHeight: height,
		Regions:        []registry.Region{registry.Bounds{Top: 0, Span: hero.PinSpan * height}.Region(hero.ID)},
		Config:         cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	vp := coordinator.NewMemoryViewport(extent, height)
	c := coordinator.New(registry.New(logger), vp, cfg,
		coordinator.WithLogger(logger),
		coordinator.WithRecorder(trace.NewRecorder(store, sess.ID)),
	)
	defer c.Close()

	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start coordinator: %w", err)
	}
	h, err := scene.MountHero(c, vp, 0, time.Now(), hero, logger)
	if err != nil {
		return fmt.Errorf("failed to mount hero: %w", err)
	}
	defer h.Unmount()

	nav := scene.NewNavThreshold(scene.DefaultNavThreshold)
	c.Subscribe(func(f coordinator.Frame) {
		if scrolled, changed := nav.Update(f.Offset); changed {
			fmt.Printf("  nav scrolled=%v\n", scrolled)
		}
	})

	fmt.Println("Scroll coordinator ready.")
	fmt.Printf("  DB: %s | Session: %s\n", settings.DB, sess.ID)
	fmt.Println("Commands: scroll N | tick MS | ready ID | content-ready H | resize H | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := execute(c, vp, h, line); err != nil {
			log.Printf("error: %v", err)
			continue
		}
		printStatus(c, h)
	}
	return scanner.Err()
}

// #endregion main

// #region commands

func execute(c *coordinator.Coordinator, vp *coordinator.MemoryViewport, h *scene.Hero, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	if len(args) != 1 {
		return fmt.Errorf("%s takes exactly one argument", cmd)
	}

	switch cmd {
	case "ready":
		return c.Ready(args[0])
	}

	n, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	switch cmd {
	case "scroll":
		c.Scroll(n, time.Now())
	case "tick":
		pump(c, h, time.Duration(n)*time.Millisecond)
	case "content-ready":
		vp.SetExtent(n)
		return c.ContentReady()
	case "resize":
		vp.SetHeight(n)
		return c.Resize()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// pump runs the frame loop for d of wall time, printing decisions and
// programmatic scroll writes as they happen.
func pump(c *coordinator.Coordinator, h *scene.Hero, d time.Duration) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	deadline := time.After(d)
	for {
		select {
		case now := <-ticker.C:
			wasSnapping := c.Snapping()
			if dec := c.Tick(now); dec != nil {
				fmt.Printf("  decision=%s region=%s target=%.4f ease=%v (%s)\n",
					dec.Action, dec.RegionID, dec.Target, dec.Duration, dec.Reason)
			}
			if wasSnapping {
				f := c.Frame()
				fmt.Printf("  scroll-to %.1f\n", f.Offset)
			}
			h.Draw(now)
		case <-deadline:
			return
		}
	}
}

func printStatus(c *coordinator.Coordinator, h *scene.Hero) {
	f := c.Frame()
	st := h.Draw(time.Now())
	fmt.Printf("[gen %d] offset=%.1f extent=%.0f global=%.4f hero=%s exit=%.3f stale=%v\n",
		f.Generation, f.Offset, f.Extent, f.Global, st.Phase, st.Exit, c.Stale())
}

// #endregion commands
