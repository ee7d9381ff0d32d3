// Package echarts reads the ECharts option objects embedded in Markdown
// fences. Input is permissive JavaScript object syntax: unquoted keys,
// single-quoted strings and trailing commas are normalised before parsing.
package echarts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Chart types understood by the converter.
const (
	TypeBar  = "bar"
	TypeLine = "line"
	TypePie  = "pie"
)

// ErrInvalid is returned for configs that do not normalise to a JSON object.
var ErrInvalid = errors.New("echarts: invalid config")

var (
	unquotedKey   = regexp.MustCompile(`([{,]\s*)([a-zA-Z_$][a-zA-Z0-9_$]*)\s*:`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Series is one entry of the option's series array.
type Series struct {
	Name   string // "" when the config omits it
	Type   string
	Values []float64
	Labels []string // pie data point names, "" for raw numbers
	IsPie  bool
}

// Config is the subset of an ECharts option the converter uses.
type Config struct {
	Title      string
	Type       string // type of the first series, bar by default
	Categories []string
	XName      string
	YName      string
	Series     []Series
}

// Normalize rewrites JavaScript object syntax into JSON.
func Normalize(src string) string {
	s := unquotedKey.ReplaceAllString(src, `$1"$2":`)
	s = strings.ReplaceAll(s, "'", `"`)
	return trailingComma.ReplaceAllString(s, "$1")
}

// Parse normalises and reads an ECharts option.
func Parse(src string) (*Config, error) {
	js := Normalize(strings.TrimSpace(src))
	if !gjson.Valid(js) {
		return nil, ErrInvalid
	}
	root := gjson.Parse(js)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is %s", ErrInvalid, root.Type)
	}

	cfg := &Config{
		Title: root.Get("title.text").String(),
		Type:  TypeBar,
	}

	x := first(root.Get("xAxis"))
	for _, v := range x.Get("data").Array() {
		cfg.Categories = append(cfg.Categories, v.String())
	}
	cfg.XName = x.Get("name").String()
	cfg.YName = first(root.Get("yAxis")).Get("name").String()

	series := root.Get("series")
	if !series.IsArray() {
		series = gjson.Parse("[" + series.Raw + "]")
	}
	for i, s := range series.Array() {
		if !s.IsObject() {
			continue
		}
		typ := strings.ToLower(s.Get("type").String())
		if i == 0 && typ != "" {
			cfg.Type = chartType(typ)
		}
		data := s.Get("data")
		if !data.IsArray() {
			continue
		}
		ser := Series{Name: s.Get("name").String(), Type: chartType(typ)}
		for _, d := range data.Array() {
			if d.IsObject() {
				ser.IsPie = true
				ser.Labels = append(ser.Labels, d.Get("name").String())
				ser.Values = append(ser.Values, number(d.Get("value")))
				continue
			}
			ser.Labels = append(ser.Labels, "")
			ser.Values = append(ser.Values, number(d))
		}
		cfg.Series = append(cfg.Series, ser)
	}
	return cfg, nil
}

// PieCategories labels the first series' data points, numbering unnamed
// points 类别1, 类别2, ...
func (c *Config) PieCategories() []string {
	if len(c.Series) == 0 {
		return nil
	}
	labels := make([]string, len(c.Series[0].Labels))
	for i, l := range c.Series[0].Labels {
		if l == "" {
			l = fmt.Sprintf("类别%d", i+1)
		}
		labels[i] = l
	}
	return labels
}

func first(r gjson.Result) gjson.Result {
	if r.IsArray() {
		return r.Get("0")
	}
	return r
}

func chartType(t string) string {
	switch t {
	case TypeLine, TypePie:
		return t
	}
	return TypeBar
}

// number reads numeric data; strings holding numbers are accepted, anything
// else is 0.
func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		return r.Float()
	}
	return 0
}
