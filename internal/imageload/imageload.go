// Package imageload fetches images referenced from Markdown and prepares
// them for embedding: format sniffing, downscaling and transcoding.
package imageload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxWidth = 600
	userAgent       = "Mozilla/5.0 (md2doc Image Downloader)"

	// maxImageBytes caps downloads and file reads.
	maxImageBytes = 32 << 20
)

var (
	ErrUnsupported = errors.New("unsupported image format")
	ErrEmptySource = errors.New("empty image source")
)

// allowedExt lists the file extensions accepted for local images.
var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".dib": true,
}

// passthrough formats are embedded without re-encoding when small enough.
var passthrough = map[string]bool{"jpg": true, "png": true, "gif": true, "bmp": true}

// Options configures a Loader.
type Options struct {
	Timeout  time.Duration
	MaxWidth int    // pixels; wider images are downscaled
	BaseDir  string // resolves relative paths; working directory when empty
	Client   *http.Client
}

// Loader reads images from URLs and local paths.
type Loader struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options, log *slog.Logger) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{opts: opts, log: log}
}

// WithBaseDir returns a copy of the loader resolving relative paths against dir.
func (l *Loader) WithBaseDir(dir string) *Loader {
	cp := *l
	cp.opts.BaseDir = dir
	return &cp
}

// Load reads src and returns an embeddable image sized for display.
func (l *Loader) Load(ctx context.Context, src string) (*wordml.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	if isURL(src) {
		data, err = l.fetch(ctx, src)
	} else {
		data, err = l.readFile(src)
	}
	if err != nil {
		return nil, err
	}

	img, err := l.prepare(data)
	if err != nil {
		return nil, err
	}
	img.Name = filepath.Base(src)
	l.log.Info("image loaded", "src", src, "format", img.Ext,
		"bytes", len(img.Data), "duration_ms", time.Since(start).Milliseconds())
	return img, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fetch performs a single GET; there are no retries.
func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return data, nil
}

func (l *Loader) readFile(name string) ([]byte, error) {
	if !filepath.IsAbs(name) {
		base := l.opts.BaseDir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			base = wd
		}
		name = filepath.Join(base, name)
	}
	if !allowedExt[strings.ToLower(filepath.Ext(name))] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}
	st, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("read image: %s is not a regular file", name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}

// prepare sniffs the format, embeds common formats as they are and
// re-encodes everything else, downscaling images wider than MaxWidth.
func (l *Loader) prepare(data []byte) (*wordml.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, ErrUnsupported
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
	}

	ext := kind.Extension
	if passthrough[ext] && cfg.Width <= l.opts.MaxWidth {
		return &wordml.Image{
			Data:   data,
			Ext:    embedExt(ext),
			Width:  int64(cfg.Width) * wordml.EMUPerPixel,
			Height: int64(cfg.Height) * wordml.EMUPerPixel,
		}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if img.Bounds().Dx() > l.opts.MaxWidth {
		img = imaging.Resize(img, l.opts.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	out := "png"
	if ext == "jpg" {
		out = "jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90))
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", out, err)
	}

	b := img.Bounds()
	return &wordml.Image{
		Data:   buf.Bytes(),
		Ext:    out,
		Width:  int64(b.Dx()) * wordml.EMUPerPixel,
		Height: int64(b.Dy()) * wordml.EMUPerPixel,
	}, nil
}

func embedExt(ext string) string {
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}
