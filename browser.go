package doceditor

import (
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/salhakar/doceditor/internal/process"
)

// browserHandle owns one headless Chrome process.
type browserHandle struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pid      int
}

// launchBrowser starts Chrome and connects to it.
// Rod downloads Chromium on first run if no browser is found.
func launchBrowser() (*browserHandle, error) {
	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &browserHandle{browser: b, launcher: l, pid: l.PID()}, nil
}

// Close shuts the browser down and kills any leftover child processes.
func (h *browserHandle) Close() error {
	if h == nil {
		return nil
	}
	err := h.browser.Close()
	process.KillProcessGroup(h.pid)
	h.launcher.Kill()
	return err
}
