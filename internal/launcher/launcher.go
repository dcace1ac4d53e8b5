// Package launcher hands wallet approval URLs to something that can open them.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrInvalidURL is returned for URLs that are not absolute.
var ErrInvalidURL = errors.New("launcher: not an absolute URL")

// Launcher opens a URL for the user.
type Launcher interface {
	Launch(ctx context.Context, rawURL string) error
}

// Func adapts a function to a Launcher.
type Func func(ctx context.Context, rawURL string) error

func (f Func) Launch(ctx context.Context, rawURL string) error { return f(ctx, rawURL) }

// OS opens URLs with the platform's default handler.
type OS struct {
	// GOOS overrides runtime.GOOS; empty means the running platform.
	GOOS string
	// run starts the command; nil uses exec.CommandContext(...).Start.
	run func(ctx context.Context, name string, args ...string) error
}

// Launch starts the opener without waiting for it to exit.
func (o OS) Launch(ctx context.Context, rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	name, args := o.command(rawURL)
	run := o.run
	if run == nil {
		run = startDetached
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	return nil
}

func (o OS) command(rawURL string) (string, []string) {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

func startDetached(_ context.Context, name string, args ...string) error {
	// Not CommandContext: the browser must outlive the request context.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Print writes the URL to W instead of opening it.
type Print struct {
	W      io.Writer
	Prefix string
}

func (p Print) Launch(_ context.Context, rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	prefix := p.Prefix
	if prefix == "" {
		prefix = "Open this URL to continue: "
	}
	_, err := fmt.Fprintf(p.W, "%s%s\n", prefix, rawURL)
	return err
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
