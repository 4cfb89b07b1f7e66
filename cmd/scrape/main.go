package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/go-scripts/scrape/internal/config"
	"github.com/go-scripts/scrape/internal/logging"
	"github.com/go-scripts/scrape/internal/writer"
)

// CLI flags structure
type CLI struct {
	Config        string `help:"Path to configuration file, merged with its .local sibling" default:"scrape.json5" type:"path"`
	Database      string `help:"SQLite database file" short:"d"`
	Output        string `help:"Directory for output files" short:"o"`
	LogFile       string `help:"Log file, appended to"`
	LogLevel      string `help:"Log level (debug, info, warn, error)"`
	Debug         bool   `help:"Enable debug logging"`
	RespectRobots bool   `help:"Skip pages disallowed by robots.txt"`

	Static    StaticCmd    `cmd:"" help:"Scrape title, links and paragraphs of a page into scraped_data.csv"`
	Titles    TitlesCmd    `cmd:"" help:"Print the article titles of a page"`
	Dynamic   DynamicCmd   `cmd:"" help:"Scrape the infinite scroll and AJAX practice sites with Chrome"`
	Multipage MultipageCmd `cmd:"" help:"Follow quote pagination and read e-commerce products"`
	Clean     CleanCmd     `cmd:"" help:"Clean scraped_data.csv, analyze it and write the report"`
	DB        DBCmd        `cmd:"" name:"db" help:"Inspect and export the scraping database"`
	Pipeline  PipelineCmd  `cmd:"" help:"Run the combined static and dynamic pipeline into the database"`
	Schedule  ScheduleCmd  `cmd:"" help:"Run the combined pipeline on a cron schedule"`
}

// apply layers the command line over the loaded configuration
func (c *CLI) apply(cfg *config.Configuration) {
	if c.Database != "" {
		cfg.Database = c.Database
	}
	if c.Output != "" {
		cfg.OutputDir = c.Output
	}
	if c.LogFile != "" {
		cfg.LogFile = c.LogFile
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.Debug {
		cfg.LogLevel = "debug"
	}
	if c.RespectRobots {
		cfg.RespectRobots = true
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("scrape"),
		kong.Description("Scrape practice sites, clean the results and keep them in SQLite."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)
	cli.apply(&cfg)

	logger, closer, err := logging.New(logging.Options{
		File:  cfg.LogFile,
		Level: cfg.LogLevel,
	})
	kctx.FatalIfErrorf(err)

	files, err := writer.New(cfg.OutputDir)
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logging.Into(ctx, logger)

	app := &App{
		Config: cfg,
		Logger: logger,
		Files:  files,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(app)

	stop()
	closer.Close()
	kctx.FatalIfErrorf(err)
}
