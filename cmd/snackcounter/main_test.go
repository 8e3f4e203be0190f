package main

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/abrezinsky/snackcounter/internal/config"
	"github.com/abrezinsky/snackcounter/internal/logger"
)

func TestApplyFlags_OnlyExplicitFlagsOverride(t *testing.T) {
	f, fs, err := parseFlags([]string{"-port", "8080", "-store", "MONGO", "-loglevel", "debug"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	cfg := config.Config{Port: 5000, StoreDriver: config.StoreSQLite, SQLitePath: "env.db", LogLevel: "info"}
	applyFlags(fs, &cfg, f)

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.StoreDriver != config.StoreMongo {
		t.Errorf("expected mongo store, got %q", cfg.StoreDriver)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug level, got %q", cfg.LogLevel)
	}
	if cfg.SQLitePath != "env.db" {
		t.Errorf("unset flag overrode env value: %q", cfg.SQLitePath)
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	if _, _, err := parseFlags([]string{"-bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func newTestConsole() (*console, *bool, *[]string) {
	quit := false
	var opened []string
	c := &console{
		menuURL: "http://192.168.1.20:5000/api/snacks",
		log:     logger.Discard(),
		quit:    func() { quit = true },
		open: func(url string) error {
			opened = append(opened, url)
			return nil
		},
	}
	return c, &quit, &opened
}

func TestConsole_HandleKey(t *testing.T) {
	c, quit, opened := newTestConsole()

	if !c.handleKey('h') || !c.log.IsHTTPLoggingEnabled() {
		t.Error("expected h to enable HTTP logging")
	}
	if !c.handleKey('H') || c.log.IsHTTPLoggingEnabled() {
		t.Error("expected H to disable HTTP logging")
	}

	c.handleKey('m')
	if len(*opened) != 1 || (*opened)[0] != c.menuURL {
		t.Errorf("expected menu URL opened, got %v", *opened)
	}

	if !c.handleKey('x') {
		t.Error("unbound keys should be ignored")
	}
	if c.handleKey('q') || !*quit {
		t.Error("expected q to quit")
	}
}

func TestConsole_OpenError(t *testing.T) {
	c, _, _ := newTestConsole()
	c.open = func(string) error { return errors.New("no browser") }
	if !c.handleKey('m') {
		t.Error("a failed open should not stop the console")
	}
}

func TestConsole_ListenStopsOnQuit(t *testing.T) {
	c, quit, _ := newTestConsole()
	c.listen(strings.NewReader("h?qh"))

	if !*quit {
		t.Error("expected quit")
	}
	if !c.log.IsHTTPLoggingEnabled() {
		t.Error("keys after q should not be handled")
	}
}

func TestCycleLogLevel(t *testing.T) {
	log := logger.Discard()
	log.SetLevel(slog.LevelDebug)

	want := []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError, slog.LevelDebug}
	for _, level := range want {
		cycleLogLevel(log)
		if log.GetLevel() != level {
			t.Errorf("expected %s, got %s", level, log.GetLevel())
		}
	}
}
