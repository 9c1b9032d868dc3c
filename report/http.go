package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:3000"
	DefaultQueueSize = 64
	DefaultTimeout   = 2 * time.Second

	runIDHeader = "X-Run-ID"
)

// HTTPReporter sends progress to GET {base}/runcount/{generation}/{liveCells}.
//
// Report only enqueues; Run drains the queue. When the queue is full the
// report is dropped rather than blocking the simulation.
type HTTPReporter struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	queue   chan Progress

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// HTTPOption configures an HTTPReporter
type HTTPOption func(*HTTPReporter)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPReporter) { r.client = c }
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(r *HTTPReporter) { r.timeout = d }
}

func WithQueueSize(n int) HTTPOption {
	return func(r *HTTPReporter) { r.queue = make(chan Progress, max(n, 1)) }
}

func WithLogger(l *slog.Logger) HTTPOption {
	return func(r *HTTPReporter) { r.logger = l }
}

// NewHTTPReporter creates a reporter for baseURL; an empty baseURL uses DefaultBaseURL
func NewHTTPReporter(baseURL string, opts ...HTTPOption) *HTTPReporter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	r := &HTTPReporter{
		baseURL: baseURL,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		queue:   make(chan Progress, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report enqueues p without blocking
func (r *HTTPReporter) Report(p Progress) {
	select {
	case r.queue <- p:
	default:
		r.dropped.Add(1)
		r.logger.Debug("progress report dropped, queue full",
			slog.Any("generation", p.Generation))
	}
}

// Run sends queued reports until ctx is cancelled, then drains whatever is
// still queued within one timeout of grace. Requests already in flight are not
// aborted by the cancellation. Send failures are logged and discarded, so Run
// only returns once ctx is done and the queue is drained.
func (r *HTTPReporter) Run(ctx context.Context) error {
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			r.drain(sendCtx)
			return nil
		case p := <-r.queue:
			r.deliver(sendCtx, p)
		}
	}
}

func (r *HTTPReporter) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	for {
		select {
		case p := <-r.queue:
			r.deliver(ctx, p)
		default:
			return
		}
	}
}

func (r *HTTPReporter) deliver(ctx context.Context, p Progress) {
	if err := r.send(ctx, p); err != nil {
		r.failed.Add(1)
		r.logger.Warn("progress report failed",
			slog.Any("generation", p.Generation),
			slog.Any("live_cells", p.LiveCells),
			slog.String("error", err.Error()))
		return
	}
	r.sent.Add(1)
}

// Endpoint builds the report URL for p
func (r *HTTPReporter) Endpoint(p Progress) (string, error) {
	u, err := url.JoinPath(r.baseURL, "runcount",
		strconv.FormatUint(uint64(p.Generation), 10),
		strconv.FormatUint(uint64(p.LiveCells), 10))
	if err != nil {
		return "", errors.Wrapf(err, "[Endpoint] invalid base url: %+v", r.baseURL)
	}
	return u, nil
}

func (r *HTTPReporter) send(ctx context.Context, p Progress) error {
	endpoint, err := r.Endpoint(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "[send] failed to build request: %+v", endpoint)
	}
	if p.RunID != "" {
		req.Header.Set(runIDHeader, p.RunID)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[send] request failed: %+v", endpoint)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("[send] unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return nil
}

func (r *HTTPReporter) Sent() uint64    { return r.sent.Load() }
func (r *HTTPReporter) Failed() uint64  { return r.failed.Load() }
func (r *HTTPReporter) Dropped() uint64 { return r.dropped.Load() }
