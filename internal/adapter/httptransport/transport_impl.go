package httptransport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/repository"
)

// maxDrain bounds how much of a response body is read before closing it, so
// keep-alive connections can be reused without trusting the server.
const maxDrain = 64 << 10

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds one request. Zero means no limit.
	Timeout            time.Duration
	InsecureSkipVerify bool
	UserAgent          string
	// MaxConnsPerHost is usually the pool size.
	MaxConnsPerHost int
}

type httpTransport struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// New creates a transport backed by net/http.
func New(opts Options, logger *zap.Logger) repository.TransportRepository {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxConnsPerHost = opts.MaxConnsPerHost
	base.MaxIdleConnsPerHost = opts.MaxConnsPerHost
	if opts.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in for self-signed nodes
	}
	return &httpTransport{
		client:    &http.Client{Transport: base, Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

func (t *httpTransport) Send(ctx context.Context, req *http.Request) (*entity.Response, error) {
	req = req.WithContext(ctx)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &entity.TransportError{URL: redact(req), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	t.logger.Debug("debugpanel request done",
		zap.String("url", redact(req)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return &entity.Response{StatusCode: resp.StatusCode, Reason: reasonPhrase(resp)}, nil
}

// reasonPhrase extracts the reason from the status line, falling back to
// the standard text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

// redact drops any userinfo from the URL before it is logged or reported.
func redact(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.Redacted()
}
