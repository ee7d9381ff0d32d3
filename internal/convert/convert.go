// Package convert runs the two-pass Markdown to Word pipeline: render a
// skeleton with placeholders, write and reopen it as a template, then fill
// it with collected values and rebind its charts.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/413232903/markdown2word-mcp/internal/collect"
	"github.com/413232903/markdown2word-mcp/internal/imageload"
	"github.com/413232903/markdown2word-mcp/internal/markdown"
	"github.com/413232903/markdown2word-mcp/internal/params"
	"github.com/413232903/markdown2word-mcp/internal/rebind"
	"github.com/413232903/markdown2word-mcp/internal/substitute"
	"github.com/413232903/markdown2word-mcp/internal/template"
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

// ErrEmptyInput is returned for blank Markdown.
var ErrEmptyInput = errors.New("convert: empty markdown input")

// Phases reported through Request.Progress.
const (
	PhaseParse      = "parse"
	PhaseTemplate   = "template"
	PhaseCollect    = "collect"
	PhaseSubstitute = "substitute"
	PhaseRebind     = "rebind"
	PhaseWrite      = "write"
)

// Options configures a Converter.
type Options struct {
	OutputDir     string
	DefaultTitle  string
	ImageTimeout  time.Duration
	ImageMaxWidth int
	StatsWindow   time.Duration
}

// Converter is safe for concurrent use; every conversion gets its own
// builder, document and parameter table.
type Converter struct {
	opts   Options
	images *imageload.Loader
	stats  *Stats
	log    *slog.Logger
}

func New(opts Options, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(os.TempDir(), "md2doc")
	}
	return &Converter{
		opts: opts,
		images: imageload.New(imageload.Options{
			Timeout:  opts.ImageTimeout,
			MaxWidth: opts.ImageMaxWidth,
		}, log),
		stats: NewStats(opts.StatsWindow),
		log:   log,
	}
}

// Request is one conversion.
type Request struct {
	Markdown []byte

	// Output is the destination path. When empty a <uuid>.docx name in the
	// output directory is used.
	Output string
	// BaseDir resolves relative image paths.
	BaseDir string
	// Title overrides every other title source.
	Title string
	// KeepTemplate leaves the intermediate <output>_template.docx in place.
	KeepTemplate bool
	// Progress, when set, is called as each phase starts.
	Progress func(phase string)
}

// Result describes a finished conversion.
type Result struct {
	Path       string
	FileName   string
	Template   string // set only when the template was kept
	Duration   time.Duration
	Substitute substitute.Result
	Rebind     rebind.Result
}

func (c *Converter) Stats() *Stats { return c.stats }

// OutputDir is the directory generated names are placed in.
func (c *Converter) OutputDir() string { return c.opts.OutputDir }

// Convert renders req.Markdown to a .docx file.
func (c *Converter) Convert(ctx context.Context, req Request) (res *Result, err error) {
	if len(bytes.TrimSpace(req.Markdown)) == 0 {
		return nil, ErrEmptyInput
	}
	start := time.Now()
	defer func() {
		c.stats.Record(time.Since(start), err)
	}()

	out := req.Output
	if out == "" {
		if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("output dir: %w", err)
		}
		out = filepath.Join(c.opts.OutputDir, uuid.NewString()+".docx")
	}
	progress := req.Progress
	if progress == nil {
		progress = func(string) {}
	}
	log := c.log.With("file", filepath.Base(out))

	progress(PhaseParse)
	md, err := markdown.Parse(req.Markdown)
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}

	progress(PhaseTemplate)
	skeleton, err := template.New(log).Build(md)
	if err != nil {
		return nil, fmt.Errorf("build template: %w", err)
	}
	tmpl := TemplatePath(out)
	if err := skeleton.SaveFile(tmpl); err != nil {
		os.Remove(tmpl)
		return nil, fmt.Errorf("write template: %w", err)
	}
	if !req.KeepTemplate {
		defer os.Remove(tmpl)
	}
	doc, err := wordml.OpenFile(tmpl)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	progress(PhaseCollect)
	images := c.images
	if req.BaseDir != "" {
		images = images.WithBaseDir(req.BaseDir)
	}
	values := collect.New(images, collect.Options{DefaultTitle: c.opts.DefaultTitle}, log).Collect(ctx, md)
	if t := strings.TrimSpace(req.Title); t != "" {
		values.Set(collect.TitleKey, params.TextValue(t))
	}

	progress(PhaseSubstitute)
	subRes := substitute.New(values, log).Apply(doc)

	progress(PhaseRebind)
	bindRes := rebind.New(values, log).Apply(doc)

	progress(PhaseWrite)
	if err := doc.SaveFile(out); err != nil {
		os.Remove(out)
		return nil, fmt.Errorf("write document: %w", err)
	}

	res = &Result{
		Path:       out,
		FileName:   filepath.Base(out),
		Duration:   time.Since(start),
		Substitute: subRes,
		Rebind:     bindRes,
	}
	if req.KeepTemplate {
		res.Template = tmpl
	}
	log.Info("conversion complete",
		"blocks", len(md.Blocks),
		"replaced", subRes.Replaced,
		"unresolved", len(subRes.Unresolved),
		"charts", bindRes.Charts,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// ConvertFile converts the Markdown file src. Relative images resolve
// against the directory of src. An empty dst writes next to src.
func (c *Converter) ConvertFile(ctx context.Context, src, dst string, req Request) (*Result, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	if dst == "" {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".docx"
	}
	req.Markdown = data
	req.Output = dst
	if req.BaseDir == "" {
		req.BaseDir = filepath.Dir(src)
	}
	return c.Convert(ctx, req)
}

// TemplatePath names the intermediate template written next to out.
func TemplatePath(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + "_template.docx"
}

// FilesPath is the route generated documents are downloaded from.
const FilesPath = "/api/markdown/files/"

// DownloadURL joins the public base URL and a generated file name.
func DownloadURL(base, name string) string {
	return strings.TrimRight(base, "/") + FilesPath + name
}
