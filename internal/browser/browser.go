// Package browser hands URLs to the desktop's default handler: the menu page
// from the server console, snack images and upload previews from snackctl.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Starter launches an external program without waiting for it
type Starter interface {
	Start(name string, args ...string) error
}

type execStarter struct{}

func (execStarter) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var defaultStarter Starter = execStarter{}

// allowedSchemes are the only targets passed to the OS handler. Image
// references come from the server, so anything else is refused.
var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"file":  true,
}

// Open shows target in the default browser or viewer
func Open(target string) error {
	return OpenWith(target, defaultStarter, runtime.GOOS)
}

// OpenWith is Open with an explicit starter and GOOS
func OpenWith(target string, s Starter, goos string) error {
	name, args, err := Command(target, goos)
	if err != nil {
		return err
	}
	return s.Start(name, args...)
}

// Command returns the program and arguments that open target on goos
func Command(target, goos string) (string, []string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", nil, fmt.Errorf("invalid url %q: %w", target, err)
	}
	if !allowedSchemes[u.Scheme] {
		return "", nil, fmt.Errorf("refusing to open %q: unsupported scheme", target)
	}

	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
