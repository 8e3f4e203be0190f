package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abrezinsky/snackcounter/internal/browser"
	"github.com/abrezinsky/snackcounter/internal/catalog"
	"github.com/abrezinsky/snackcounter/internal/config"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/models"
	"github.com/abrezinsky/snackcounter/pkg/snackapi"
)

var (
	version = "dev"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("snackctl", flag.ContinueOnError)
	apiURL := fs.String("api", config.GetString("SNACK_API_URL", "http://localhost:5000/api"), "Snack API base URL")
	assetBase := fs.String("assets", config.GetString("SNACK_ASSET_BASE", ""), "Origin for relative image paths (default: API origin)")
	timeout := fs.Duration("timeout", config.GetDuration("SNACK_API_TIMEOUT", snackapi.DefaultTimeout), "Per-request timeout")
	logLevel := fs.String("loglevel", config.GetString("SNACK_LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	showVersion := fs.Bool("version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `snackctl - snack counter admin console

Usage:
  snackctl [options]          Interactive catalog console
  snackctl [options] watch    Stream live catalog changes

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Printf("snackctl %s\n", version)
		return nil
	}

	log := logger.NewWithOptions(logger.Options{Level: logger.ParseLevel(*logLevel), Output: os.Stderr})

	opts := []snackapi.Option{snackapi.WithTimeout(*timeout)}
	if *assetBase != "" {
		opts = append(opts, snackapi.WithAssetBase(*assetBase))
	}
	client := snackapi.NewHTTPClient(*apiURL, log, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch fs.Arg(0) {
	case "":
		return interactive(ctx, client, log)
	case "watch":
		return watch(ctx, client)
	default:
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
}

func interactive(ctx context.Context, client *snackapi.HTTPClient, log logger.Logger) error {
	model := catalog.New(client, catalog.WithLogger(log))
	defer model.Close()

	fmt.Printf("Snacks Cart - %s\n", client.BaseURL())
	if err := model.Load(ctx); err != nil {
		fmt.Println(catalog.Notice(err))
	}

	sh := newShell(model, os.Stdin, os.Stdout, browser.Open)
	sh.list()
	fmt.Println(`Type "help" for commands.`)
	sh.run(ctx)
	return nil
}

func watch(ctx context.Context, client *snackapi.HTTPClient) error {
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", client.WatchURL())
	return client.Watch(ctx, func(ev snackapi.Event) {
		ts := time.Now().Format("15:04:05")
		switch ev.Type {
		case models.EventCatalogSnapshot:
			fmt.Printf("%s  %d snacks in catalog\n", ts, len(ev.Snacks))
		case models.EventSnackCreated:
			fmt.Printf("%s  + %s (%s) ₹%s\n", ts, ev.Snack.Name, ev.Snack.Category, formatPrice(ev.Snack.Price))
		case models.EventSnackUpdated:
			fmt.Printf("%s  ~ %s (%s) ₹%s\n", ts, ev.Snack.Name, ev.Snack.Category, formatPrice(ev.Snack.Price))
		case models.EventSnackDeleted:
			fmt.Printf("%s  - %s\n", ts, ev.ID)
		default:
			fmt.Printf("%s  %s\n", ts, ev.Type)
		}
	})
}
