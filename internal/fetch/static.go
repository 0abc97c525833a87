package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/law-makers/funnel/internal/auth"
	"github.com/law-makers/funnel/internal/cache"
	"github.com/law-makers/funnel/internal/delay"
	"github.com/law-makers/funnel/internal/proxy"
	"github.com/law-makers/funnel/internal/retry"
	"github.com/law-makers/funnel/pkg/models"
	"github.com/rs/zerolog/log"
)

// Static fetches pages with plain HTTP requests. It is the default transport
// for job boards that render listings server-side.
type Static struct {
	client    *http.Client
	cache     cache.Cache
	limiter   delay.Limiter
	proxies   *proxy.Pool
	retryCfg  retry.Config
	timeout   time.Duration
	userAgent string
	cacheTTL  time.Duration
}

// NewStatic creates the HTTP fetcher. cache and proxies may be nil.
func NewStatic(c cache.Cache, lim delay.Limiter, proxies *proxy.Pool, timeout, cacheTTL time.Duration, userAgent string) *Static {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxies != nil && proxies.Size() > 0 {
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			next := proxies.Next()
			if next == "" {
				return nil, nil
			}
			return url.Parse(next)
		}
	}

	return &Static{
		client:    &http.Client{Transport: transport, Timeout: timeout},
		cache:     c,
		limiter:   lim,
		proxies:   proxies,
		retryCfg:  retry.DefaultConfig(),
		timeout:   timeout,
		userAgent: userAgent,
		cacheTTL:  cacheTTL,
	}
}

// Name returns the name of this fetcher.
func (s *Static) Name() string {
	return "StaticFetcher"
}

// Fetch retrieves one page, honoring the politeness delay, the response
// cache, and the retry policy, in that order.
func (s *Static) Fetch(ctx context.Context, req Request) (*models.Page, error) {
	start := time.Now()

	log.Debug().
		Str("url", req.URL).
		Str("method", req.method()).
		Str("fetcher", s.Name()).
		Msg("Starting fetch")

	key := cache.Key(req.method(), req.URL, req.Form.Encode())
	if s.cache != nil {
		if page, ok := s.cache.Get(key); ok {
			return page, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, req.URL); err != nil {
			return nil, &TransportError{URL: req.URL, Err: err}
		}
	}

	var page *models.Page
	err := retry.Do(ctx, s.retryCfg, func() error {
		var err error
		page, err = s.doRequest(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	page.Elapsed = time.Since(start)
	if s.cache != nil && req.method() == http.MethodGet {
		_ = s.cache.Set(key, page, s.cacheTTL)
	}

	log.Debug().
		Str("url", req.URL).
		Int("status", page.StatusCode).
		Dur("elapsed", page.Elapsed).
		Msg("Fetch completed")

	return page, nil
}

func (s *Static) doRequest(ctx context.Context, req Request) (*models.Page, error) {
	var body io.Reader
	if req.method() == http.MethodPost && req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), req.URL, body)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}

	httpReq.Header.Set("User-Agent", s.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if req.method() == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	// Session cookies go on the request, not a shared jar, so concurrent
	// workers never observe each other's cookies.
	if req.Session != "" {
		s.attachSession(httpReq, req.Session)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &TransportError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}

	page := &models.Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(raw),
		Headers:    make(map[string]string, len(resp.Header)),
		FetchedAt:  time.Now(),
	}
	for k, values := range resp.Header {
		if len(values) > 0 {
			page.Headers[k] = values[0]
		}
	}
	return page, nil
}

func (s *Static) attachSession(httpReq *http.Request, name string) {
	session, err := auth.Load(name)
	if err != nil {
		log.Warn().Err(err).Str("session", name).Msg("Failed to load session")
		return
	}
	for _, c := range session.Cookies {
		httpReq.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	for k, v := range session.Headers {
		httpReq.Header.Set(k, v)
	}
	log.Debug().
		Str("session", name).
		Int("cookies", len(session.Cookies)).
		Msg("Session cookies attached")
}
