package wordml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/xuri/excelize/v2"
)

// ChartType selects the plot element of a chart part.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// ChartSpec is the data a new chart part is built from.
type ChartSpec struct {
	Type       ChartType
	Title      string
	Categories []string
	Series     []SeriesSpec
	XTitle     string
	YTitle     string
}

type SeriesSpec struct {
	Name   string
	Values []float64
}

// Chart is a DrawingML chart part.
type Chart struct {
	Name string // package part name

	root      *etree.Element // c:chartSpace
	embedding string
	modified  bool
}

// Series is one c:ser element of a chart.
type Series struct {
	el    *etree.Element
	index int
}

const (
	catAxisID = "500000001"
	valAxisID = "500000002"
)

func parseChart(name string, data []byte) (*Chart, error) {
	root, err := parseXML(data)
	if err != nil {
		return nil, err
	}
	if root.SelectElement("c:chart") == nil {
		return nil, fmt.Errorf("missing c:chart")
	}
	return &Chart{Name: name, root: root}, nil
}

// NewChart builds a chart part from spec. It becomes part of a package via
// Document.AddChart.
func NewChart(spec ChartSpec) *Chart {
	switch spec.Type {
	case ChartLine, ChartPie:
	default:
		spec.Type = ChartBar
	}
	cs := etree.NewElement("c:chartSpace")
	cs.CreateAttr("xmlns:c", nsC)
	cs.CreateAttr("xmlns:a", nsA)
	cs.CreateAttr("xmlns:r", nsR)
	setVal0(cs.CreateElement("c:date1904"), "0")
	setVal0(cs.CreateElement("c:lang"), "zh-CN")
	setVal0(cs.CreateElement("c:roundedCorners"), "0")

	chart := cs.CreateElement("c:chart")
	chart.AddChild(titleElement(spec.Title))
	setVal0(chart.CreateElement("c:autoTitleDeleted"), "0")

	plot := chart.CreateElement("c:plotArea")
	plot.CreateElement("c:layout")

	var group *etree.Element
	switch spec.Type {
	case ChartLine:
		group = plot.CreateElement("c:lineChart")
		setVal0(group.CreateElement("c:grouping"), "standard")
		setVal0(group.CreateElement("c:varyColors"), "0")
	case ChartPie:
		group = plot.CreateElement("c:pieChart")
		setVal0(group.CreateElement("c:varyColors"), "1")
	default:
		group = plot.CreateElement("c:barChart")
		setVal0(group.CreateElement("c:barDir"), "col")
		setVal0(group.CreateElement("c:grouping"), "clustered")
		setVal0(group.CreateElement("c:varyColors"), "0")
	}

	c := &Chart{root: cs}
	for i, s := range spec.Series {
		ser := group.CreateElement("c:ser")
		setVal0(ser.CreateElement("c:idx"), itoa(i))
		setVal0(ser.CreateElement("c:order"), itoa(i))
		ser.AddChild(seriesName(i, s.Name))
		switch spec.Type {
		case ChartBar:
			setVal0(ser.CreateElement("c:invertIfNegative"), "0")
		case ChartLine:
			marker := ser.CreateElement("c:marker")
			setVal0(marker.CreateElement("c:symbol"), "circle")
		}
		ser.AddChild(dataLabels(spec.Type == ChartPie))
		ser.AddChild(categoryData(spec.Categories))
		ser.AddChild(valueData(i, s.Values))
		if spec.Type == ChartLine {
			setVal0(ser.CreateElement("c:smooth"), "0")
		}
	}

	switch spec.Type {
	case ChartPie:
		setVal0(group.CreateElement("c:firstSliceAng"), "0")
	case ChartBar:
		setVal0(group.CreateElement("c:gapWidth"), "150")
		fallthrough
	default:
		if spec.Type == ChartLine {
			setVal0(group.CreateElement("c:marker"), "1")
		}
		setVal0(group.CreateElement("c:axId"), catAxisID)
		setVal0(group.CreateElement("c:axId"), valAxisID)
		plot.AddChild(axis("c:catAx", catAxisID, valAxisID, "b", spec.XTitle))
		plot.AddChild(axis("c:valAx", valAxisID, catAxisID, "l", spec.YTitle))
	}

	legend := chart.CreateElement("c:legend")
	setVal0(legend.CreateElement("c:legendPos"), "b")
	setVal0(legend.CreateElement("c:overlay"), "0")
	setVal0(chart.CreateElement("c:plotVisOnly"), "1")
	setVal0(chart.CreateElement("c:dispBlanksAs"), "gap")

	ext := cs.CreateElement("c:externalData")
	ext.CreateAttr("r:id", "rId1")
	setVal0(ext.CreateElement("c:autoUpdate"), "0")

	c.modified = true
	return c
}

// Title returns the displayed title text: rich text runs concatenated, or
// the cached string of a cell reference.
func (c *Chart) Title() string {
	title := c.root.FindElement("c:chart/c:title")
	if title == nil {
		return ""
	}
	if rich := title.FindElement("c:tx/c:rich"); rich != nil {
		var sb strings.Builder
		for _, t := range rich.FindElements(".//a:t") {
			sb.WriteString(t.Text())
		}
		return sb.String()
	}
	if v := title.FindElement("c:tx/c:strRef/c:strCache/c:pt/c:v"); v != nil {
		return v.Text()
	}
	return ""
}

// SetTitle replaces the chart title with a single rich text run.
func (c *Chart) SetTitle(text string) {
	chart := c.root.SelectElement("c:chart")
	if old := chart.SelectElement("c:title"); old != nil {
		idx := old.Index()
		chart.RemoveChild(old)
		chart.InsertChildAt(idx, titleElement(text))
	} else {
		chart.InsertChildAt(0, titleElement(text))
	}
	if del := chart.SelectElement("c:autoTitleDeleted"); del != nil {
		setVal0(del, "0")
	}
	c.modified = true
}

// Series returns every series of every plot group in document order.
func (c *Chart) Series() []*Series {
	plot := c.root.FindElement("c:chart/c:plotArea")
	if plot == nil {
		return nil
	}
	var out []*Series
	for _, group := range plot.ChildElements() {
		for _, ser := range group.SelectElements("c:ser") {
			out = append(out, &Series{el: ser, index: len(out)})
		}
	}
	return out
}

// MarkModified flags the chart so its embedded workbook is regenerated on save.
func (c *Chart) MarkModified() { c.modified = true }

// Element exposes the chart part root for inspection.
func (c *Chart) Element() *etree.Element { return c.root }

// Name returns the series display name from its string cache or literal.
func (s *Series) Name() string {
	if v := s.el.FindElement("c:tx/c:strRef/c:strCache/c:pt/c:v"); v != nil {
		return v.Text()
	}
	if v := s.el.FindElement("c:tx/c:v"); v != nil {
		return v.Text()
	}
	return ""
}

func (s *Series) SetName(name string) {
	replaceChild(s.el, "c:tx", seriesName(s.index, name), "c:spPr", "c:invertIfNegative", "c:marker", "c:explosion", "c:dLbls", "c:cat", "c:val")
}

// Categories returns the category labels from the string or number cache.
func (s *Series) Categories() []string {
	cat := s.el.SelectElement("c:cat")
	if cat == nil {
		return nil
	}
	for _, p := range []string{"c:strRef/c:strCache", "c:numRef/c:numCache", "c:strLit", "c:numLit"} {
		if cache := cat.FindElement(p); cache != nil {
			return cachePoints(cache)
		}
	}
	return nil
}

func (s *Series) SetCategories(labels []string) {
	replaceChild(s.el, "c:cat", categoryData(labels), "c:val")
}

// Values returns the numeric cache; unparsable points read as 0.
func (s *Series) Values() []float64 {
	val := s.el.SelectElement("c:val")
	if val == nil {
		return nil
	}
	cache := val.FindElement("c:numRef/c:numCache")
	if cache == nil {
		cache = val.SelectElement("c:numLit")
	}
	if cache == nil {
		return nil
	}
	pts := cachePoints(cache)
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i], _ = strconv.ParseFloat(strings.TrimSpace(p), 64)
	}
	return out
}

func (s *Series) SetValues(values []float64) {
	replaceChild(s.el, "c:val", valueData(s.index, values), "c:smooth", "c:shape", "c:extLst")
}

// cachePoints reads c:pt values placed by their idx attribute.
func cachePoints(cache *etree.Element) []string {
	n, _ := strconv.Atoi(childVal0(cache, "c:ptCount"))
	pts := cache.SelectElements("c:pt")
	n = max(n, len(pts))
	out := make([]string, n)
	for i, pt := range pts {
		idx, err := strconv.Atoi(pt.SelectAttrValue("idx", ""))
		if err != nil || idx < 0 || idx >= n {
			idx = i
		}
		if v := pt.SelectElement("c:v"); v != nil {
			out[idx] = v.Text()
		}
	}
	return out
}

// replaceChild swaps the tag child of parent for repl in place; when absent,
// repl goes before the first of the given successors, or last.
func replaceChild(parent *etree.Element, tag string, repl *etree.Element, successors ...string) {
	if old := parent.SelectElement(tag); old != nil {
		idx := old.Index()
		parent.RemoveChild(old)
		parent.InsertChildAt(idx, repl)
		return
	}
	for _, next := range successors {
		if el := parent.SelectElement(next); el != nil {
			parent.InsertChildAt(el.Index(), repl)
			return
		}
	}
	parent.AddChild(repl)
}

func titleElement(text string) *etree.Element {
	title := etree.NewElement("c:title")
	rich := title.CreateElement("c:tx").CreateElement("c:rich")
	rich.CreateElement("a:bodyPr")
	rich.CreateElement("a:lstStyle")
	p := rich.CreateElement("a:p")
	defRPr := p.CreateElement("a:pPr").CreateElement("a:defRPr")
	defRPr.CreateAttr("sz", "1400")
	defRPr.CreateAttr("b", "1")
	r := p.CreateElement("a:r")
	rPr := r.CreateElement("a:rPr")
	rPr.CreateAttr("lang", "zh-CN")
	rPr.CreateAttr("altLang", "en-US")
	rPr.CreateAttr("sz", "1400")
	rPr.CreateAttr("b", "1")
	r.CreateElement("a:t").SetText(text)
	setVal0(title.CreateElement("c:overlay"), "0")
	return title
}

func seriesName(index int, name string) *etree.Element {
	tx := etree.NewElement("c:tx")
	ref := tx.CreateElement("c:strRef")
	col, _ := excelize.ColumnNumberToName(index + 2)
	ref.CreateElement("c:f").SetText(fmt.Sprintf("Sheet1!$%s$1", col))
	cache := ref.CreateElement("c:strCache")
	setVal0(cache.CreateElement("c:ptCount"), "1")
	pt := cache.CreateElement("c:pt")
	pt.CreateAttr("idx", "0")
	pt.CreateElement("c:v").SetText(name)
	return tx
}

func categoryData(labels []string) *etree.Element {
	cat := etree.NewElement("c:cat")
	ref := cat.CreateElement("c:strRef")
	ref.CreateElement("c:f").SetText(fmt.Sprintf("Sheet1!$A$2:$A$%d", len(labels)+1))
	cache := ref.CreateElement("c:strCache")
	setVal0(cache.CreateElement("c:ptCount"), itoa(len(labels)))
	for i, l := range labels {
		pt := cache.CreateElement("c:pt")
		pt.CreateAttr("idx", itoa(i))
		pt.CreateElement("c:v").SetText(l)
	}
	return cat
}

func valueData(index int, values []float64) *etree.Element {
	val := etree.NewElement("c:val")
	ref := val.CreateElement("c:numRef")
	col, _ := excelize.ColumnNumberToName(index + 2)
	ref.CreateElement("c:f").SetText(fmt.Sprintf("Sheet1!$%s$2:$%s$%d", col, col, len(values)+1))
	cache := ref.CreateElement("c:numCache")
	cache.CreateElement("c:formatCode").SetText("General")
	setVal0(cache.CreateElement("c:ptCount"), itoa(len(values)))
	for i, v := range values {
		pt := cache.CreateElement("c:pt")
		pt.CreateAttr("idx", itoa(i))
		pt.CreateElement("c:v").SetText(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return val
}

func dataLabels(pie bool) *etree.Element {
	d := etree.NewElement("c:dLbls")
	setVal0(d.CreateElement("c:showLegendKey"), "0")
	if pie {
		setVal0(d.CreateElement("c:showVal"), "0")
		setVal0(d.CreateElement("c:showCatName"), "1")
		setVal0(d.CreateElement("c:showSerName"), "0")
		setVal0(d.CreateElement("c:showPercent"), "1")
		setVal0(d.CreateElement("c:showBubbleSize"), "0")
		d.CreateElement("c:separator").SetText("\n")
		setVal0(d.CreateElement("c:showLeaderLines"), "1")
		return d
	}
	setVal0(d.CreateElement("c:showVal"), "1")
	setVal0(d.CreateElement("c:showCatName"), "0")
	setVal0(d.CreateElement("c:showSerName"), "0")
	setVal0(d.CreateElement("c:showPercent"), "0")
	setVal0(d.CreateElement("c:showBubbleSize"), "0")
	return d
}

func axis(tag, id, cross, pos, title string) *etree.Element {
	ax := etree.NewElement(tag)
	setVal0(ax.CreateElement("c:axId"), id)
	setVal0(ax.CreateElement("c:scaling").CreateElement("c:orientation"), "minMax")
	setVal0(ax.CreateElement("c:delete"), "0")
	setVal0(ax.CreateElement("c:axPos"), pos)
	if tag == "c:valAx" {
		ax.CreateElement("c:majorGridlines")
	}
	if title != "" {
		ax.AddChild(titleElement(title))
	}
	nf := ax.CreateElement("c:numFmt")
	nf.CreateAttr("formatCode", "General")
	nf.CreateAttr("sourceLinked", "1")
	setVal0(ax.CreateElement("c:majorTickMark"), "out")
	setVal0(ax.CreateElement("c:minorTickMark"), "none")
	setVal0(ax.CreateElement("c:tickLblPos"), "nextTo")
	setVal0(ax.CreateElement("c:crossAx"), cross)
	setVal0(ax.CreateElement("c:crosses"), "autoZero")
	if tag == "c:catAx" {
		setVal0(ax.CreateElement("c:auto"), "1")
		setVal0(ax.CreateElement("c:lblAlgn"), "ctr")
		setVal0(ax.CreateElement("c:lblOffset"), "100")
	} else {
		setVal0(ax.CreateElement("c:crossBetween"), "between")
	}
	return ax
}

// chart elements carry an unprefixed val attribute.
func setVal0(el *etree.Element, v string) {
	el.CreateAttr("val", v)
}

func childVal0(parent *etree.Element, tag string) string {
	if el := parent.SelectElement(tag); el != nil {
		return el.SelectAttrValue("val", "")
	}
	return ""
}
