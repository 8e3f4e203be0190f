package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/browser"
	"github.com/abrezinsky/snackcounter/internal/logger"
)

// console maps single keypresses to server actions
type console struct {
	menuURL string
	log     *logger.SlogLogger
	quit    func()
	open    func(string) error // defaults to browser.Open
}

// listen reads keys from r until quit is pressed or r fails
func (c *console) listen(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if !c.handleKey(buf[0]) {
			return
		}
	}
}

// handleKey runs the action bound to key. It returns false after quit.
func (c *console) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "m":
		fmt.Printf("%sOpening menu in browser...%s\n", cyan, reset)
		open := c.open
		if open == nil {
			open = browser.Open
		}
		if err := open(c.menuURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(c.log)
	case "q", "\x03": // q or Ctrl+C
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return false
	case "?":
		printKeyboardHelp()
	}
	return true
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	var next string
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sm%s      - Open menu URL in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}
