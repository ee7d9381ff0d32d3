// Package collect derives placeholder values from the scanned block list.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/413232903/markdown2word-mcp/internal/echarts"
	"github.com/413232903/markdown2word-mcp/internal/imageload"
	"github.com/413232903/markdown2word-mcp/internal/markdown"
	"github.com/413232903/markdown2word-mcp/internal/params"
)

// TitleKey is the parameter holding the document title.
const TitleKey = "title"

const mermaidNote = "注意: Mermaid 图表已保留原始代码。如需可视化效果,请访问 https://mermaid.live/ 查看。"

// Options configures a Collector.
type Options struct {
	// DefaultTitle is used when the source has no front matter title.
	DefaultTitle string
	// Now returns the current time; the fallback title names the previous month.
	Now func() time.Time
}

// Collector builds parameter tables.
type Collector struct {
	images *imageload.Loader
	opts   Options
	log    *slog.Logger
}

func New(images *imageload.Loader, opts Options, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if images == nil {
		images = imageload.New(imageload.Options{}, log)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Collector{images: images, opts: opts, log: log}
}

// Collect returns the value of every keyed block plus the title. Image
// failures become text values and never abort collection.
func (c *Collector) Collect(ctx context.Context, md *markdown.Document) *params.Table {
	p := params.New()
	p.Set(TitleKey, params.TextValue(c.title(md)))

	for _, b := range md.Blocks {
		key := b.Key()
		switch b.Kind {
		case markdown.KindChart:
			p.SetChart(key, c.chart(key, b.Source))
		case markdown.KindTable:
			p.Set(key, params.TableValue(b.Rows))
		case markdown.KindImage:
			p.Set(key, c.image(ctx, b.Src))
		case markdown.KindMermaid:
			p.Set(key, params.TextValue(MermaidText(b.Source)))
		}
	}
	return p
}

func (c *Collector) title(md *markdown.Document) string {
	if t := strings.TrimSpace(md.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(c.opts.DefaultTitle); t != "" {
		return t
	}
	return ReportTitle(c.opts.Now())
}

// ReportTitle names the report for the month before now.
func ReportTitle(now time.Time) string {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return fmt.Sprintf("%d年%d月分析报告", prev.Year(), int(prev.Month()))
}

func (c *Collector) image(ctx context.Context, src string) params.Value {
	img, err := c.images.Load(ctx, src)
	if err != nil {
		c.log.Warn("image load failed", "src", src, "error", err)
		return params.TextValue(ImageFailure(src, err))
	}
	return params.ImageValue(img)
}

// ImageFailure is the text shown in place of an image that could not be loaded.
func ImageFailure(src string, err error) string {
	return fmt.Sprintf("[图片加载失败: %s]\n原因: %v", src, err)
}

// MermaidText is the text shown for a mermaid diagram.
func MermaidText(code string) string {
	return "【Mermaid 图表】\n\n" + strings.TrimRight(code, "\n") + "\n\n" + mermaidNote
}

func (c *Collector) chart(key, src string) *params.ChartData {
	cfg, err := echarts.Parse(src)
	if err != nil {
		c.log.Warn("chart config invalid, using default data", "key", key, "error", err)
		return DefaultChart()
	}

	data := &params.ChartData{Title: orDefault(cfg.Title, "默认标题")}
	series := cfg.Series
	if cfg.Type == echarts.TypePie {
		data.Categories = cfg.PieCategories()
		if len(series) > 1 {
			series = series[:1]
		}
	} else {
		data.Categories = cfg.Categories
	}
	for _, s := range series {
		data.Columns = append(data.Columns, params.Column{
			Name:   orDefault(s.Name, "数据系列"),
			Values: s.Values,
		})
	}
	if len(data.Columns) > 0 && cfg.YName != "" {
		data.Columns[0].Title = cfg.YName
	}
	return data
}

// DefaultChart is the data bound to charts whose config cannot be read.
func DefaultChart() *params.ChartData {
	return &params.ChartData{
		Title:      "默认图表标题",
		Categories: []string{"数据1", "数据2", "数据3"},
		Columns:    []params.Column{{Name: "默认系列", Values: []float64{10, 20, 30}}},
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
