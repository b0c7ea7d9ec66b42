package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/gpuwatch/gpuwatch/config"
	"github.com/gpuwatch/gpuwatch/handlers"
	"github.com/gpuwatch/gpuwatch/jobs"
	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/output"
	"github.com/gpuwatch/gpuwatch/services"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const appVersion = "1.2.0"

func main() {
	app := &cli.App{
		Name:      "gpuwatch",
		Usage:     "Checks GPU stock and prices from nowinstock.net",
		Version:   appVersion,
		ArgsUsage: "[GPU]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sort-by",
				Aliases: []string{"s"},
				Value:   "price",
				Usage:   "column to sort by (name, status, price, last, link)",
			},
			&cli.BoolFlag{
				Name:    "desc",
				Aliases: []string{"d"},
				Usage:   "sort in descending order",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "show all listings, including Out of Stock/Not Tracking",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "limit the number of results shown",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "output format (table, json, yaml, toml)",
			},
			&cli.BoolFlag{
				Name:  "cheapest",
				Usage: "show the cheapest available listing for every tracked model",
			},
			&cli.BoolFlag{
				Name:  "serve",
				Usage: "run the web UI instead of a one-shot report",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen address for --serve (overrides SERVER_PORT)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.LoadConfig()
	applyLogLevel(cfg.LogLevel)

	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Machine-readable output must stay clean of progress logging.
	if format != output.FormatTable {
		logrus.SetLevel(logrus.ErrorLevel)
	}

	classifier := services.NewDefaultStatusClassifier()
	priceParser := services.NewPriceParser()
	extractor := services.NewListingExtractor(classifier, priceParser)
	scraperConfig := cfg.ScraperConfig()
	fetcher := services.NewCollyPageFetcher(scraperConfig)
	pipeline := services.NewListingPipeline(fetcher, extractor, scraperConfig.BaseURL)
	aggregator := services.NewCheapestAggregator(pipeline)

	if c.Bool("serve") {
		return runServer(c, cfg, pipeline, aggregator)
	}

	if c.Bool("cheapest") {
		return runCheapest(c, aggregator, format)
	}

	return runOneShot(c, pipeline, format)
}

func runOneShot(c *cli.Context, pipeline *services.ListingPipeline, format output.Format) error {
	model := models.DefaultGpuModel
	if c.Args().Present() {
		parsed, err := models.ParseGpuModel(c.Args().First())
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		model = parsed
	}

	sortBy, err := models.ParseSortColumn(c.String("sort-by"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	opts := models.QueryOptions{
		IncludeUnavailable: c.Bool("all"),
		SortBy:             sortBy,
		Descending:         c.Bool("desc"),
	}
	if c.IsSet("limit") {
		limit := c.Int("limit")
		if limit < 0 {
			return cli.Exit("limit must be a non-negative integer", 2)
		}
		opts.Limit = &limit
	}

	listings, err := pipeline.Run(context.Background(), model, opts)
	if err != nil {
		return cli.Exit(describePipelineError(err), 1)
	}

	rendered, err := output.RenderListings(listings, format, opts.SortBy, opts.Descending)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Println(rendered)
	return nil
}

func runCheapest(c *cli.Context, aggregator *services.CheapestAggregator, format output.Format) error {
	results := aggregator.Aggregate(context.Background(), models.AllGpuModels)
	rendered, err := output.RenderCheapest(results, format)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Println(rendered)
	return nil
}

func runServer(c *cli.Context, cfg *config.Config, pipeline *services.ListingPipeline, aggregator *services.CheapestAggregator) error {
	refreshInterval := cfg.GetRefreshInterval()
	refreshJob := jobs.NewSnapshotRefreshJob(pipeline, aggregator, refreshInterval)
	refreshJob.StartPeriodicUpdates(refreshInterval)

	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{Views: engine})

	app.Use(fiberlogger.New())
	app.Use(cors.New())

	listingHandler := handlers.NewListingHandler(refreshJob)

	app.Get("/", listingHandler.Home)
	app.Get("/gpu/:model", listingHandler.ModelPage)
	app.Get("/cheapest", listingHandler.CheapestPage)
	app.Static("/static", "./static")

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"refreshing": refreshJob.IsRunning(),
		})
	})
	api.Get("/listings", listingHandler.GetListings)
	api.Get("/listings/:model", listingHandler.GetModelListings)
	api.Get("/cheapest", listingHandler.GetCheapest)

	listenAddr := c.String("listen")
	if listenAddr == "" {
		listenAddr = ":" + cfg.ServerPort
	}

	logrus.WithFields(logrus.Fields{
		"listen":           listenAddr,
		"refresh_interval": refreshInterval,
	}).Info("Starting web server")

	if err := app.Listen(listenAddr); err != nil {
		return cli.Exit(fmt.Sprintf("web server failed: %v", err), 1)
	}
	return nil
}

// describePipelineError maps the pipeline error taxonomy to the CLI's
// user-facing wording: a failed fetch reads differently from upstream
// markup drift.
func describePipelineError(err error) string {
	switch {
	case shared.IsNetworkError(err):
		return fmt.Sprintf("fetch failed: %v", err)
	case shared.IsStructureError(err):
		return fmt.Sprintf("page format changed: %v", err)
	}
	return err.Error()
}

func applyLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
