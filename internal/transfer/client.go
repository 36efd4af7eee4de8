package transfer

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"refbuild/internal/config"
	"refbuild/internal/fileutil"
	"refbuild/internal/logging"
	"refbuild/internal/services"
)

// HTTPDoer describes the HTTP client used for transfers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	Token     string
	UserAgent string
	Timeout   time.Duration
	// Progress renders a byte counter to ProgressOutput while downloading.
	Progress       bool
	ProgressOutput io.Writer
	HTTPClient     HTTPDoer
}

// Result describes one completed transfer.
type Result struct {
	URL      string
	Path     string
	Bytes    int64
	Duration time.Duration
}

// Client performs authenticated downloads.
type Client struct {
	client    HTTPDoer
	token     string
	userAgent string
	progress  bool
	out       io.Writer
	logger    *slog.Logger
}

// New constructs a Client from explicit options.
func New(opts Options, logger *slog.Logger) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	out := opts.ProgressOutput
	if out == nil {
		out = os.Stderr
	}
	return &Client{
		client:    client,
		token:     opts.Token,
		userAgent: opts.UserAgent,
		progress:  opts.Progress,
		out:       out,
		logger:    logging.NewComponentLogger(logger, "transfer"),
	}
}

// NewFromConfig builds a Client from the transfer section. Progress output is
// only enabled when stderr is a terminal.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	progress := cfg.Transfer.Progress && isatty.IsTerminal(os.Stderr.Fd())
	return New(Options{
		Token:     cfg.Transfer.Token,
		UserAgent: cfg.Transfer.UserAgent,
		Timeout:   time.Duration(cfg.Transfer.TimeoutSeconds) * time.Second,
		Progress:  progress,
	}, logger)
}

// Fetch downloads url to dst byte for byte. BioMart tables are fetched this
// way and kept next to the reconciled copies.
func (c *Client) Fetch(ctx context.Context, url, dst string) (Result, error) {
	return c.download(ctx, url, dst, false)
}

// FetchGunzip downloads a gzip-compressed url and writes the decompressed
// content to dst.
func (c *Client) FetchGunzip(ctx context.Context, url, dst string) (Result, error) {
	return c.download(ctx, url, dst, true)
}

func (c *Client) download(ctx context.Context, url, dst string, gunzip bool) (Result, error) {
	start := time.Now()
	stage := stageOf(ctx)
	body, size, err := c.open(ctx, url)
	if err != nil {
		return Result{}, err
	}
	defer body.Close()

	var src io.Reader = body
	var bar *progressbar.ProgressBar
	if c.progress {
		bar = progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(c.out),
			progressbar.OptionSetDescription(path.Base(url)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		src = io.TeeReader(body, bar)
	}

	var written int64
	err = fileutil.WriteAtomic(dst, func(w io.Writer) error {
		reader := src
		if gunzip {
			gz, err := gzip.NewReader(src)
			if err != nil {
				return fmt.Errorf("open gzip stream: %w", err)
			}
			defer gz.Close()
			reader = gz
		}
		n, err := io.Copy(w, reader)
		written = n
		return err
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransfer, stage, "download", redact(url), err)
	}

	result := Result{URL: url, Path: dst, Bytes: written, Duration: time.Since(start)}
	c.logger.Debug("transfer complete",
		logging.String("url", redact(url)),
		logging.String("path", dst),
		logging.Int64("bytes", written),
		logging.Bool("gunzip", gunzip),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (c *Client) open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	stage := stageOf(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransfer, stage, "build request", redact(url), err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("transfer started", logging.String("url", redact(url)))
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransfer, stage, "request", redact(url), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, services.Wrap(services.ErrTransfer, stage, "request",
			fmt.Sprintf("%s returned %s", redact(url), resp.Status), nil)
	}
	return resp.Body, resp.ContentLength, nil
}

func stageOf(ctx context.Context) string {
	if stage, ok := services.StageFromContext(ctx); ok {
		return stage
	}
	return "transfer"
}
