package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/handiism/rom-browser/internal/catalog"
	"github.com/handiism/rom-browser/internal/config"
	"github.com/handiism/rom-browser/internal/download"
	"github.com/handiism/rom-browser/internal/httpx"
	"github.com/handiism/rom-browser/internal/scrape"
	"github.com/handiism/rom-browser/internal/tui"
)

func main() {
	app := &cli.App{
		Name:  "rom-browser",
		Usage: "browse and download ROM sets from configured listing sites",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.json",
				Usage:   "path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "cache",
				Value: "rom_cache.json",
				Usage: "path to the catalog cache file",
			},
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "rebuild the catalog cache even if it is current",
			},
			&cli.BoolFlag{
				Name:  "no-ui",
				Usage: "refresh the catalog and exit without starting the browser",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		if errors.Is(err, config.ErrSampleWritten) {
			fmt.Printf("Wrote a sample configuration to %s. Edit it and run again.\n", c.String("config"))
			return nil
		}
		return err
	}

	store := catalog.NewStore(c.String("cache"))
	cache, err := store.Load()
	if err != nil {
		// A corrupt cache is not fatal; it gets rebuilt.
		fmt.Fprintf(os.Stderr, "Warning: unreadable cache, rebuilding: %v\n", err)
		cache = catalog.NewCache()
	}

	client := httpx.NewClient()
	extractor := scrape.NewExtractor(client)
	engine := download.NewEngine(client)

	if c.Bool("no-ui") {
		return refreshOnly(cfg, store, cache, extractor, c.Bool("refresh"))
	}

	return tui.Run(cfg, store, cache, extractor, engine, c.Bool("refresh"))
}

// refreshOnly updates the cache and prints progress to stdout, for cron
// jobs and scripted use.
func refreshOnly(cfg *config.Config, store *catalog.Store, cache *catalog.Cache, extractor catalog.Extractor, force bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	refresher := catalog.NewRefresher(store, extractor, func(e catalog.Event) {
		prefix := "›"
		switch e.Level {
		case catalog.LevelError:
			prefix = "✗"
		case catalog.LevelWarning:
			prefix = "!"
		case catalog.LevelSuccess:
			prefix = "✓"
		}
		fmt.Println(prefix + " " + e.Message)
	})

	fresh := refresher.Refresh(ctx, cfg, cache, force)
	total := 0
	for _, name := range cfg.SourceNames() {
		total += len(fresh.Records(name))
	}
	fmt.Printf("Catalog: %d sources, %d entries (%s)\n", len(cfg.SourceNames()), total, store.Path())
	return nil
}
