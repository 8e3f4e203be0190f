package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abrezinsky/snackcounter/internal/app"
	"github.com/abrezinsky/snackcounter/internal/config"
	"github.com/abrezinsky/snackcounter/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the startup logo
func showBanner() {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"    ____                    _                                ",
		"   / ___| _ __   __ _  ___| | __   ___ ___  _   _ _ __  ",
		"   \\___ \\| '_ \\ / _` |/ __| |/ /  / __/ _ \\| | | | '_ \\ ",
		"    ___) | | | | (_| | (__|   <  | (_| (_) | |_| | | | |",
		"   |____/|_| |_|\\__,_|\\___|_|\\_\\  \\___\\___/ \\__,_|_| |_|",
		"",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		for len([]rune(line)) < width {
			line += " "
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// applyFlags copies explicitly set flags over the env config
func applyFlags(fs *flag.FlagSet, cfg *config.Config, f *flags) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Port = f.port
		case "store":
			cfg.StoreDriver = strings.ToLower(f.store)
		case "db":
			cfg.SQLitePath = f.db
		case "mongo":
			cfg.MongoURI = f.mongoURI
		case "uploads":
			cfg.UploadDir = f.uploadDir
		case "upload-driver":
			cfg.UploadDriver = strings.ToLower(f.uploadDriver)
		case "menu-url":
			cfg.MenuURL = f.menuURL
		case "loglevel":
			cfg.LogLevel = f.logLevel
		case "logformat":
			cfg.LogFormat = f.logFormat
		}
	})
}

type flags struct {
	port         int
	store        string
	db           string
	mongoURI     string
	uploadDir    string
	uploadDriver string
	menuURL      string
	logLevel     string
	logFormat    string
	noBanner     bool
	noKeyboard   bool
	showVersion  bool
}

func parseFlags(args []string) (*flags, *flag.FlagSet, error) {
	f := &flags{}
	fs := flag.NewFlagSet("snackcounter", flag.ContinueOnError)
	fs.IntVar(&f.port, "port", 5000, "HTTP server port")
	fs.StringVar(&f.store, "store", config.StoreSQLite, "Catalog store: sqlite or mongo")
	fs.StringVar(&f.db, "db", "snacks.db", "SQLite database path")
	fs.StringVar(&f.mongoURI, "mongo", "mongodb://localhost:27017", "MongoDB connection URI")
	fs.StringVar(&f.uploadDir, "uploads", "uploads", "Directory for uploaded images")
	fs.StringVar(&f.uploadDriver, "upload-driver", config.UploadDisk, "Upload storage: disk or s3")
	fs.StringVar(&f.menuURL, "menu-url", "", "Address encoded in the menu QR code")
	fs.StringVar(&f.logLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "logformat", "text", "Log format (text, json)")
	fs.BoolVar(&f.noBanner, "nobanner", false, "Skip the startup banner")
	fs.BoolVar(&f.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&f.showVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Snack Counter - theatre snack inventory API

Usage:
  snackcounter [options]

Options:
  -port int            HTTP server port (default 5000, env SNACK_PORT)
  -store string        Catalog store: sqlite or mongo (env SNACK_STORE)
  -db string           SQLite database path (default "snacks.db")
  -mongo string        MongoDB URI (env SNACK_MONGO_URI)
  -uploads string      Upload directory (default "uploads")
  -upload-driver str   Upload storage: disk or s3 (env SNACK_UPLOAD_DRIVER)
  -menu-url string     Address encoded in the menu QR code
  -loglevel str        Log level: debug, info, warn, error (default "info")
  -logformat str       Log format: text or json (default "text")
  -nobanner            Skip the startup banner
  -nokeyboard          Disable keyboard shortcuts
  -version             Show version and exit

Flags override SNACK_* environment variables and .env.

Keyboard Shortcuts (when enabled):
  m              Open menu URL in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  snackcounter                                  # SQLite + local uploads on :5000
  snackcounter -store mongo -mongo mongodb://db:27017
  snackcounter -upload-driver s3                # bucket from SNACK_S3_BUCKET
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

func run(args []string) error {
	f, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	if f.showVersion {
		fmt.Printf("snackcounter %s\n", version)
		return nil
	}

	cfg := config.Load()
	applyFlags(fs, &cfg, f)

	if !f.noBanner {
		showBanner()
	}

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, appLog, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	if !f.noKeyboard {
		restore, err := makeRaw(int(os.Stdin.Fd()))
		if err != nil {
			appLog.Debug("Keyboard shortcuts unavailable", "error", err)
		} else {
			defer restore()
			printKeyboardHelp()
			c := &console{menuURL: a.MenuURL(), log: appLog, quit: stop}
			go c.listen(os.Stdin)
		}
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	return a.Run(ctx)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s%v%s\n", red, err, reset)
		os.Exit(1)
	}
}
