// Package snapshot renders static fallback images of the map pages by
// loading the served site in headless Chrome and capturing full-page
// PNGs. Clients without JS get these instead of the live Leaflet layers.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"powermap/internal/logging"
)

// Options configures one snapshot run.
type Options struct {
	BaseURL string   // where the built site is being served
	Pages   []string // server-relative paths to capture, e.g. "/maps/"
	OutDir  string
	Timeout time.Duration
}

// Result records one captured page.
type Result struct {
	Page string
	File string
}

// Run captures every configured page. It launches its own headless Chrome
// and closes it before returning. Callers should treat an error here as a
// degraded build, not a failed one: the site works without the PNGs.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	log := logging.Get(logging.CategorySnapshot)

	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create maps dir: %w", err)
	}

	var results []Result
	for _, pagePath := range opts.Pages {
		res, err := capture(browser, opts, pagePath)
		if err != nil {
			return results, fmt.Errorf("capture %s: %w", pagePath, err)
		}
		log.Info("captured %s -> %s", pagePath, res.File)
		results = append(results, res)
	}
	return results, nil
}

func capture(browser *rod.Browser, opts Options, pagePath string) (Result, error) {
	url := strings.TrimSuffix(opts.BaseURL, "/") + pagePath

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return Result{}, err
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return Result{}, err
	}
	// Leaflet fetches its JSON and tiles after load; wait for the network
	// and layout to settle before capturing.
	if err := page.WaitIdle(10 * time.Second); err != nil {
		return Result{}, err
	}

	img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return Result{}, err
	}

	file := filepath.Join(opts.OutDir, fileName(pagePath))
	if err := os.WriteFile(file, img, 0644); err != nil {
		return Result{}, err
	}
	return Result{Page: pagePath, File: file}, nil
}

// fileName maps a page path to its output name: "/" -> index.png,
// "/maps/" -> maps.png, "/maps/leave" -> maps-leave.png.
func fileName(pagePath string) string {
	trimmed := strings.Trim(pagePath, "/")
	if trimmed == "" {
		return "index.png"
	}
	return strings.ReplaceAll(trimmed, "/", "-") + ".png"
}
