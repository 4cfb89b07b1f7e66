package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-scripts/scrape/internal/logging"
	"github.com/go-scripts/scrape/internal/pipeline"
	"github.com/go-scripts/scrape/internal/queue"
	"github.com/go-scripts/scrape/internal/report"
	"github.com/go-scripts/scrape/internal/schedule"
	"github.com/go-scripts/scrape/ui"
)

type PipelineCmd struct {
	Headless  bool          `help:"Run Chrome without a window" default:"true" negatable:""`
	NoBrowser bool          `help:"Skip the dynamic sites"`
	Delay     time.Duration `help:"Pause between dynamic sites" default:"2s"`
}

func (c *PipelineCmd) Run(ctx context.Context, app *App) error {
	fmt.Fprintln(app.Stdout, "COMBINED PIPELINE")
	fmt.Fprintln(app.Stdout, strings.Repeat("=", 70))

	_, err := runPipeline(ctx, app, c.Headless, c.NoBrowser, c.Delay)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "\nCombined pipeline completed! Check '%s' for detailed execution logs.\n", app.Config.LogFile)
	return nil
}

// runPipeline logs through the context logger, so scheduled runs are tagged
// with their job.
func runPipeline(ctx context.Context, app *App, headless, noBrowser bool, delay time.Duration) (report.Run, error) {
	st, err := app.openStore(ctx)
	if err != nil {
		return report.Run{}, err
	}
	defer st.Close()

	opts := pipeline.Options{
		Static: queue.Target{Name: "PassItOn", URL: app.Config.Targets.Static, Kind: pipeline.KindStatic},
		Dynamic: []queue.Target{
			{Name: "Infinite Scroll Practice", URL: app.Config.Targets.Scroll, Kind: pipeline.KindInfiniteScroll},
			{Name: "AJAX Content Practice", URL: app.Config.Targets.AJAX, Kind: pipeline.KindAJAX},
		},
		Links:      10,
		Paragraphs: 5,
		SiteDelay:  delay,
		Spinner:    app.Stderr,
	}

	logger := logging.From(ctx)

	var dynamic pipeline.DynamicScraper
	if !noBrowser {
		b, err := app.browser(headless, false)
		if err != nil {
			// the static half still runs without Chrome
			logger.Error("browser unavailable, skipping dynamic sites", "err", err)
		} else {
			defer b.Close()
			dynamic = b
		}
	}

	start := time.Now()
	run, err := pipeline.New(st, app.client(), dynamic, opts, logger).Run(ctx)
	report.PrintRun(app.Stdout, run)

	panel := app.newPanel()
	stats := ui.RunStats{
		Title:     "Combined Pipeline",
		SessionID: run.SessionID,
		StartTime: start,
		EndTime:   time.Now(),
		Saved:     run.Saved.Total(),
		Output:    app.Config.Output(app.Config.Database),
	}
	for _, s := range run.Sites {
		stats.Sites = append(stats.Sites, ui.SiteResult{Name: s})
	}
	for _, e := range run.Errors {
		name, msg, _ := strings.Cut(e, ": ")
		stats.Sites = append(stats.Sites, ui.SiteResult{Name: name, Err: errors.New(msg)})
	}
	panel.UpdateStats(stats)
	fmt.Fprintln(app.Stdout, panel.View())

	return run, err
}

type ScheduleCmd struct {
	Cron      string        `help:"Cron expression or descriptor (defaults to the configured schedule)"`
	Now       bool          `help:"Also run once immediately"`
	Headless  bool          `help:"Run Chrome without a window" default:"true" negatable:""`
	NoBrowser bool          `help:"Skip the dynamic sites"`
	Delay     time.Duration `help:"Pause between dynamic sites" default:"2s"`
}

func (c *ScheduleCmd) Run(ctx context.Context, app *App) error {
	expr := c.Cron
	if expr == "" {
		expr = app.Config.Schedule
	}

	s := schedule.New(app.Logger)
	err := s.Add(expr, "pipeline", func(ctx context.Context) error {
		_, err := runPipeline(ctx, app, c.Headless, c.NoBrowser, c.Delay)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Stdout, "Running the combined pipeline on %q, press Ctrl+C to stop\n", expr)
	return s.Run(ctx, c.Now)
}
