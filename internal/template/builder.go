// Package template renders the skeleton document: styled text, numbered
// headings and lists, chart parts, and ${key} placeholders for the values
// the collector produces from the same block list.
package template

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/413232903/markdown2word-mcp/internal/echarts"
	"github.com/413232903/markdown2word-mcp/internal/markdown"
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

// TitleKey is the placeholder of the document title paragraph.
const TitleKey = "title"

// Placeholder returns the ${key} token for key.
func Placeholder(key string) string { return "${" + key + "}" }

// Builder renders one skeleton document. Numbering ids are allocated from
// the builder's own counters.
type Builder struct {
	log       *slog.Logger
	doc       *wordml.Document
	numbering Numbering
	headings  HeadingNumbers
	lists     map[int]int // markdown list id -> ordered numId
}

func New(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{log: log, lists: make(map[int]int)}
}

// Build renders md into a new document.
func (b *Builder) Build(md *markdown.Document) (*wordml.Document, error) {
	b.doc = wordml.New()

	b.add(&wordml.Paragraph{
		Props: wordml.ParagraphStyle{Align: wordml.AlignCenter, Line: 360}.Element(),
		Runs: []wordml.Run{{
			Props: wordml.RunStyle{Font: BodyFont, Size: TitleSize, Bold: true}.Element(),
			Text:  Placeholder(TitleKey),
		}},
	})
	b.add(&wordml.Paragraph{Props: bodyParagraph().Element()})

	for _, blk := range md.Blocks {
		b.block(blk)
	}

	styles, err := stylesXML()
	if err != nil {
		return nil, fmt.Errorf("styles: %w", err)
	}
	b.doc.SetPart("word/styles.xml", styles, wordml.CTStyles, wordml.RelStyles)
	if !b.numbering.Empty() {
		num, err := b.numbering.XML()
		if err != nil {
			return nil, fmt.Errorf("numbering: %w", err)
		}
		b.doc.SetPart("word/numbering.xml", num, wordml.CTNumbering, wordml.RelNumbering)
	}
	return b.doc, nil
}

func (b *Builder) add(blk wordml.Block) {
	b.doc.Body = append(b.doc.Body, blk)
}

func (b *Builder) block(blk markdown.Block) {
	switch blk.Kind {
	case markdown.KindHeading:
		label := b.headings.Next(blk.Level)
		b.add(&wordml.Paragraph{
			Props: wordml.ParagraphStyle{StyleID: fmt.Sprintf("Heading%d", min(max(blk.Level, 1), 6))}.Element(),
			Runs:  []wordml.Run{{Text: label + " " + blk.Text()}},
		})

	case markdown.KindParagraph:
		b.add(&wordml.Paragraph{Props: bodyParagraph().Element(), Runs: textRuns(blk.Runs)})

	case markdown.KindListItem:
		style := wordml.ParagraphStyle{NumID: b.listNum(blk), Level: blk.Depth, Line: 360}
		b.add(&wordml.Paragraph{Props: style.Element(), Runs: textRuns(blk.Runs)})

	case markdown.KindTable:
		b.caption(fmt.Sprintf("表格 %d：", blk.Index))
		b.placeholder(blk.Key(), true)

	case markdown.KindChart:
		b.caption(fmt.Sprintf("图表 %d：", blk.Index))
		spec := b.chartSpec(blk)
		run := b.doc.AddChart(wordml.NewChart(spec), wordml.ChartWidthEMU, wordml.ChartHeightEMU)
		b.add(&wordml.Paragraph{
			Props: wordml.ParagraphStyle{Align: wordml.AlignCenter}.Element(),
			Runs:  []wordml.Run{run},
		})

	case markdown.KindImage:
		b.placeholder(blk.Key(), true)

	case markdown.KindMermaid:
		b.placeholder(blk.Key(), false)

	case markdown.KindCode:
		for _, line := range strings.Split(blk.Source, "\n") {
			b.add(&wordml.Paragraph{
				Props: wordml.ParagraphStyle{Line: 240}.Element(),
				Runs: []wordml.Run{{
					Props: wordml.RunStyle{Font: CodeFont, Size: CodeSize}.Element(),
					Text:  strings.TrimRight(line, "\r"),
				}},
			})
		}
	}
}

func (b *Builder) listNum(blk markdown.Block) int {
	if !blk.Ordered {
		return b.numbering.Bullet()
	}
	id, ok := b.lists[blk.ListID]
	if !ok {
		id = b.numbering.Ordered()
		b.lists[blk.ListID] = id
	}
	return id
}

func (b *Builder) caption(text string) {
	b.add(&wordml.Paragraph{
		Props: wordml.ParagraphStyle{Align: wordml.AlignCenter, Line: 360}.Element(),
		Runs: []wordml.Run{{
			Props: wordml.RunStyle{Font: BodyFont, Size: CaptionSize, Bold: true}.Element(),
			Text:  text,
		}},
	})
}

func (b *Builder) placeholder(key string, centered bool) {
	style := bodyParagraph()
	if centered {
		style = wordml.ParagraphStyle{Align: wordml.AlignCenter, Line: 360}
	}
	b.add(&wordml.Paragraph{
		Props: style.Element(),
		Runs: []wordml.Run{{
			Props: wordml.RunStyle{Font: BodyFont, Size: BodySize}.Element(),
			Text:  Placeholder(key),
		}},
	})
}

// chartSpec builds the initial chart from the fence config. The chart title
// is the block key; the rebinder replaces it with the collected title.
func (b *Builder) chartSpec(blk markdown.Block) wordml.ChartSpec {
	cfg, err := echarts.Parse(blk.Source)
	if err != nil {
		b.log.Warn("chart config invalid, using sample chart", "key", blk.Key(), "error", err)
		return SampleChart(blk.Key())
	}

	spec := wordml.ChartSpec{
		Type:   wordml.ChartType(cfg.Type),
		Title:  blk.Key(),
		XTitle: cfg.XName,
		YTitle: cfg.YName,
	}
	if cfg.Type == echarts.TypePie {
		spec.Categories = cfg.PieCategories()
		if len(cfg.Series) > 0 {
			s := cfg.Series[0]
			spec.Series = []wordml.SeriesSpec{{Name: orDefault(s.Name, "系列1"), Values: s.Values}}
		}
		return spec
	}
	spec.Categories = cfg.Categories
	for i, s := range cfg.Series {
		spec.Series = append(spec.Series, wordml.SeriesSpec{
			Name:   orDefault(s.Name, fmt.Sprintf("系列%d", i+1)),
			Values: s.Values,
		})
	}
	return spec
}

// SampleChart is the bar chart used when a fence does not hold a readable config.
func SampleChart(title string) wordml.ChartSpec {
	return wordml.ChartSpec{
		Type:       wordml.ChartBar,
		Title:      title,
		Categories: []string{"类别1", "类别2", "类别3"},
		Series:     []wordml.SeriesSpec{{Name: "系列1", Values: []float64{20, 40, 30}}},
		XTitle:     "X轴",
		YTitle:     "Y轴",
	}
}

func bodyParagraph() wordml.ParagraphStyle {
	return wordml.ParagraphStyle{Line: 360, FirstLine: 480, FirstLineChars: 200}
}

func textRuns(runs []markdown.Run) []wordml.Run {
	out := make([]wordml.Run, 0, len(runs))
	for _, r := range runs {
		style := wordml.RunStyle{Font: BodyFont, Size: BodySize, Bold: r.Bold, Italic: r.Italic}
		if r.Code {
			style.Font = CodeFont
			style.Shade = "F2F2F2"
		}
		out = append(out, wordml.Run{Props: style.Element(), Text: r.Text})
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
