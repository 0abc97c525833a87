package fetch

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/funnel/pkg/models"
	"github.com/rs/zerolog/log"
)

// Driven fetches pages through headless Chrome. It exists for boards whose
// listings only appear after client-side rendering; plain HTTP gets a shell.
type Driven struct {
	mu         sync.Mutex
	allocCtx   context.Context
	allocStop  context.CancelFunc
	timeout    time.Duration
	userAgent  string
	proxy      string
	chromePath string
}

// NewDriven creates the browser-driven fetcher. The browser process itself
// starts lazily on the first fetch. chromePath may be empty, in which case
// the executable is located by probing the usual install paths.
func NewDriven(timeout time.Duration, userAgent, proxyURL, chromePath string) *Driven {
	return &Driven{
		timeout:    timeout,
		userAgent:  userAgent,
		proxy:      proxyURL,
		chromePath: chromePath,
	}
}

// Name returns the name of this fetcher.
func (d *Driven) Name() string {
	return "DrivenFetcher"
}

// Fetch navigates to the URL and returns the rendered document.
// Only GET is supported; board searches that need POST must use the static
// fetcher for the search page and may still use Driven for detail pages.
func (d *Driven) Fetch(ctx context.Context, req Request) (*models.Page, error) {
	if req.method() != http.MethodGet {
		return nil, &TransportError{URL: req.URL, Err: errPostUnsupported}
	}

	start := time.Now()
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}

	alloc, err := d.allocator()
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}

	browserCtx, cancelBrowser := chromedp.NewContext(alloc)
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	page := &models.Page{
		URL:       req.URL,
		Headers:   make(map[string]string),
		FetchedAt: time.Now(),
	}

	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Response.URL == req.URL {
				page.StatusCode = int(resp.Response.Status)
				for k, v := range resp.Response.Headers {
					if s, ok := v.(string); ok {
						page.Headers[k] = s
					}
				}
			}
		}
	})

	var html string
	err = chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(req.URL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Brief settle so the board's initial render completes.
			time.Sleep(300 * time.Millisecond)
			return nil
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}

	page.Body = html
	page.Elapsed = time.Since(start)

	log.Debug().
		Str("url", req.URL).
		Int("status", page.StatusCode).
		Dur("elapsed", page.Elapsed).
		Str("fetcher", d.Name()).
		Msg("Driven fetch completed")

	return page, nil
}

// Close shuts the shared browser allocator down.
func (d *Driven) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.allocStop != nil {
		d.allocStop()
		d.allocCtx = nil
		d.allocStop = nil
	}
}

func (d *Driven) allocator() (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.allocCtx != nil {
		return d.allocCtx, nil
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(d.userAgent),
	}
	path := d.chromePath
	if path == "" {
		path = findChrome()
	}
	if path != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, opts...)
	}
	if d.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(d.proxy))
	}

	d.allocCtx, d.allocStop = chromedp.NewExecAllocator(context.Background(), opts...)
	return d.allocCtx, nil
}

// findChrome locates a Chrome/Chromium executable across platforms.
func findChrome() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		if isExecutable(path) {
			return path
		}
		log.Warn().Str("path", path).Msg("CHROME_PATH set but not executable")
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base != "" {
				candidates = append(candidates,
					filepath.Join(base, "Google\\Chrome\\Application\\chrome.exe"),
					filepath.Join(base, "Chromium\\Application\\chrome.exe"),
				)
			}
		}
	case "linux":
		candidates = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
	}

	for _, path := range candidates {
		if isExecutable(path) {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	log.Warn().Str("os", runtime.GOOS).Msg("Chrome not found, chromedp will use its default")
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}
