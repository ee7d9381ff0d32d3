package wordml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
)

// Relationship types.
const (
	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	RelSettings       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	RelImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelChart          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	RelPackage        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
)

// Content types.
const (
	CTDocument  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	CTStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	CTNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	CTSettings  = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	CTChart     = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	CTRels      = "application/vnd.openxmlformats-package.relationships+xml"
	CTXlsx      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const (
	nsPkgRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes    = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsW        = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP       = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic      = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsC        = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	partTypes  = "[Content_Types].xml"
	partRels   = "_rels/.rels"
	partMain   = "word/document.xml"
	partDocRel = "word/_rels/document.xml.rels"
)

var (
	chartPartRe = regexp.MustCompile(`^word/charts/chart(\d+)\.xml$`)
	relIDRe     = regexp.MustCompile(`^rId(\d+)$`)
)

// Document is an open .docx package: the parsed body plus every other part.
type Document struct {
	Body   []Block
	SectPr *etree.Element

	root   *etree.Element // w:document, body rebuilt on save
	types  *etree.Element
	rels   *etree.Element
	charts []*Chart
	parts  map[string][]byte
	names  []string // write order

	images map[*Image]imageRef

	nextRel   int
	nextDocPr int
	nextMedia int
	nextChart int
}

type imageRef struct {
	rID string
	id  int
}

// New returns an empty A4 document.
func New() *Document {
	d := &Document{
		parts:     make(map[string][]byte),
		images:    make(map[*Image]imageRef),
		nextRel:   1,
		nextDocPr: 1,
		nextMedia: 1,
		nextChart: 1,
	}

	d.root = etree.NewElement("w:document")
	d.ensureNamespaces()

	d.types = etree.NewElement("Types")
	d.types.CreateAttr("xmlns", nsTypes)
	d.addDefault("rels", CTRels)
	d.addDefault("xml", "application/xml")
	d.addOverride(partMain, CTDocument)

	d.rels = etree.NewElement("Relationships")
	d.rels.CreateAttr("xmlns", nsPkgRels)

	pkgRels := etree.NewElement("Relationships")
	pkgRels.CreateAttr("xmlns", nsPkgRels)
	rel := pkgRels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", RelOfficeDocument)
	rel.CreateAttr("Target", partMain)
	data, _ := xmlBytes(pkgRels)

	d.names = append(d.names, partRels, partMain, partDocRel)
	d.parts[partRels] = data
	d.SectPr = defaultSectPr()
	return d
}

// OpenFile reads a .docx package from disk.
func OpenFile(name string) (*Document, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Open(f, st.Size())
}

// Open reads a .docx package.
func Open(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	d := &Document{
		parts:     make(map[string][]byte),
		images:    make(map[*Image]imageRef),
		nextRel:   1,
		nextDocPr: 1,
		nextMedia: 1,
		nextChart: 1,
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if err := d.load(f.Name, data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
	}

	if d.root == nil {
		return nil, fmt.Errorf("open package: missing %s", partMain)
	}
	if d.types == nil {
		return nil, fmt.Errorf("open package: missing %s", partTypes)
	}
	if d.rels == nil {
		d.rels = etree.NewElement("Relationships")
		d.rels.CreateAttr("xmlns", nsPkgRels)
		d.names = append(d.names, partDocRel)
	}
	d.ensureNamespaces()
	d.scanCounters()
	return d, nil
}

func (d *Document) load(name string, data []byte) error {
	switch {
	case name == partTypes:
		el, err := parseXML(data)
		if err != nil {
			return err
		}
		d.types = el
		return nil
	case name == partDocRel:
		el, err := parseXML(data)
		if err != nil {
			return err
		}
		d.rels = el
	case name == partMain:
		el, err := parseXML(data)
		if err != nil {
			return err
		}
		body := el.SelectElement("w:body")
		if body == nil {
			return fmt.Errorf("missing w:body")
		}
		d.Body = parseBlocks(body)
		if sp := body.SelectElement("w:sectPr"); sp != nil {
			d.SectPr = sp.Copy()
		}
		el.RemoveChild(body)
		d.root = el
	case chartPartRe.MatchString(name):
		c, err := parseChart(name, data)
		if err != nil {
			return err
		}
		d.charts = append(d.charts, c)
	default:
		d.parts[name] = data
	}
	d.names = append(d.names, name)
	return nil
}

// scanCounters positions id allocators past everything the package already uses.
func (d *Document) scanCounters() {
	for _, rel := range d.rels.SelectElements("Relationship") {
		if m := relIDRe.FindStringSubmatch(rel.SelectAttrValue("Id", "")); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= d.nextRel {
				d.nextRel = n + 1
			}
		}
	}
	walkElements(d.Body, func(el *etree.Element) {
		for _, dp := range el.FindElements(".//wp:docPr") {
			if n, _ := strconv.Atoi(dp.SelectAttrValue("id", "")); n >= d.nextDocPr {
				d.nextDocPr = n + 1
			}
		}
	})
	for _, c := range d.charts {
		if m := chartPartRe.FindStringSubmatch(c.Name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= d.nextChart {
				d.nextChart = n + 1
			}
		}
		c.embedding = d.chartEmbedding(c.Name)
	}
	for name := range d.parts {
		if strings.HasPrefix(name, "word/media/") {
			d.nextMedia++
		}
	}
}

func (d *Document) chartEmbedding(chartName string) string {
	relsName := path.Join(path.Dir(chartName), "_rels", path.Base(chartName)+".rels")
	data, ok := d.parts[relsName]
	if !ok {
		return ""
	}
	el, err := parseXML(data)
	if err != nil {
		return ""
	}
	for _, rel := range el.SelectElements("Relationship") {
		if rel.SelectAttrValue("Type", "") == RelPackage {
			return path.Clean(path.Join(path.Dir(chartName), rel.SelectAttrValue("Target", "")))
		}
	}
	return ""
}

// Charts returns the embedded charts in package order.
func (d *Document) Charts() []*Chart {
	return d.charts
}

// Part returns the raw bytes of a part that the model does not interpret.
func (d *Document) Part(name string) ([]byte, bool) {
	data, ok := d.parts[name]
	return data, ok
}

// SetPart stores a raw part, registering its content type and, when relType
// is set, a document relationship. It returns the relationship id or "".
func (d *Document) SetPart(name string, data []byte, contentType, relType string) string {
	if _, ok := d.parts[name]; !ok {
		d.names = append(d.names, name)
	}
	d.parts[name] = data
	if contentType != "" {
		d.addOverride(name, contentType)
	}
	if relType == "" {
		return ""
	}
	return d.addRel(relType, strings.TrimPrefix(name, "word/"))
}

// NextDocPrID allocates a drawing object id unique within the document.
func (d *Document) NextDocPrID() int {
	id := d.nextDocPr
	d.nextDocPr++
	return id
}

// AddChart registers a chart part with its embedded workbook and returns a
// run holding the inline drawing that displays it.
func (d *Document) AddChart(c *Chart, cx, cy int64) Run {
	n := d.nextChart
	d.nextChart++
	c.Name = fmt.Sprintf("word/charts/chart%d.xml", n)
	c.embedding = fmt.Sprintf("word/embeddings/Microsoft_Excel_Sheet%d.xlsx", n)
	c.modified = true
	d.charts = append(d.charts, c)
	d.names = append(d.names, c.Name)
	d.addOverride(c.Name, CTChart)
	d.addDefault("xlsx", CTXlsx)

	rels := etree.NewElement("Relationships")
	rels.CreateAttr("xmlns", nsPkgRels)
	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", RelPackage)
	rel.CreateAttr("Target", "../embeddings/"+path.Base(c.embedding))
	data, _ := xmlBytes(rels)
	relsName := fmt.Sprintf("word/charts/_rels/chart%d.xml.rels", n)
	d.names = append(d.names, relsName, c.embedding)
	d.parts[relsName] = data

	rID := d.addRel(RelChart, strings.TrimPrefix(c.Name, "word/"))
	return Run{Raw: chartRun(rID, d.NextDocPrID(), cx, cy)}
}

// imageRef registers an image part the first time it is written.
func (d *Document) imageRef(img *Image) imageRef {
	if ref, ok := d.images[img]; ok {
		return ref
	}
	ext := strings.ToLower(img.Ext)
	if ext == "" {
		ext = "png"
	}
	var name string
	for {
		name = fmt.Sprintf("word/media/image%d.%s", d.nextMedia, ext)
		d.nextMedia++
		if _, taken := d.parts[name]; !taken {
			break
		}
	}
	d.addDefault(ext, mimeForExt(ext))
	d.names = append(d.names, name)
	d.parts[name] = img.Data
	ref := imageRef{rID: d.addRel(RelImage, strings.TrimPrefix(name, "word/")), id: d.NextDocPrID()}
	d.images[img] = ref
	return ref
}

// SaveFile writes the package to name.
func (d *Document) SaveFile(name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return d.Save(f)
}

// Save writes the package as a zip stream.
func (d *Document) Save(w io.Writer) (err error) {
	main, err := d.documentXML()
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	for _, c := range d.charts {
		if !c.modified || c.embedding == "" {
			continue
		}
		wb, err := c.Workbook()
		if err != nil {
			return fmt.Errorf("chart workbook %s: %w", c.Name, err)
		}
		if !slices.Contains(d.names, c.embedding) {
			d.names = append(d.names, c.embedding)
		}
		d.parts[c.embedding] = wb
	}

	zw := zip.NewWriter(w)
	defer func() { err = multierr.Append(err, zw.Close()) }()

	types, err := xmlBytes(d.types)
	if err != nil {
		return err
	}
	if err := writeDataToZip(zw, partTypes, types); err != nil {
		return err
	}

	charts := make(map[string]*Chart, len(d.charts))
	for _, c := range d.charts {
		charts[c.Name] = c
	}

	for _, name := range d.names {
		var data []byte
		switch {
		case name == partTypes:
			continue
		case name == partMain:
			data = main
		case name == partDocRel:
			if data, err = xmlBytes(d.rels); err != nil {
				return err
			}
		case charts[name] != nil:
			if data, err = xmlBytes(charts[name].root); err != nil {
				return err
			}
		default:
			var ok bool
			if data, ok = d.parts[name]; !ok {
				continue
			}
		}
		if err := writeDataToZip(zw, name, data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func (d *Document) documentXML() ([]byte, error) {
	root := d.root.Copy()
	body := root.CreateElement("w:body")
	for _, b := range d.Body {
		body.AddChild(d.writeBlock(b))
	}
	if d.SectPr != nil {
		body.AddChild(d.SectPr.Copy())
	}
	return xmlBytes(root)
}

func (d *Document) ensureNamespaces() {
	for _, ns := range [][2]string{
		{"xmlns:w", nsW}, {"xmlns:r", nsR}, {"xmlns:wp", nsWP},
		{"xmlns:a", nsA}, {"xmlns:pic", nsPic}, {"xmlns:c", nsC},
	} {
		if d.root.SelectAttr(ns[0]) == nil {
			d.root.CreateAttr(ns[0], ns[1])
		}
	}
}

func (d *Document) addRel(relType, target string) string {
	for _, rel := range d.rels.SelectElements("Relationship") {
		if rel.SelectAttrValue("Type", "") == relType && rel.SelectAttrValue("Target", "") == target {
			return rel.SelectAttrValue("Id", "")
		}
	}
	id := "rId" + itoa(d.nextRel)
	d.nextRel++
	rel := d.rels.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
	return id
}

func (d *Document) addDefault(ext, contentType string) {
	for _, el := range d.types.SelectElements("Default") {
		if strings.EqualFold(el.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	el := etree.NewElement("Default")
	el.CreateAttr("Extension", ext)
	el.CreateAttr("ContentType", contentType)
	// Defaults precede overrides.
	d.types.InsertChildAt(0, el)
}

func (d *Document) addOverride(name, contentType string) {
	partName := "/" + name
	for _, el := range d.types.SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == partName {
			el.CreateAttr("ContentType", contentType)
			return
		}
	}
	el := d.types.CreateElement("Override")
	el.CreateAttr("PartName", partName)
	el.CreateAttr("ContentType", contentType)
}

func defaultSectPr() *etree.Element {
	sp := etree.NewElement("w:sectPr")
	sz := sp.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", "11906")
	sz.CreateAttr("w:h", "16838")
	mar := sp.CreateElement("w:pgMar")
	for _, kv := range [][2]string{
		{"w:top", "1440"}, {"w:right", "1800"}, {"w:bottom", "1440"}, {"w:left", "1800"},
		{"w:header", "851"}, {"w:footer", "992"}, {"w:gutter", "0"},
	} {
		mar.CreateAttr(kv[0], kv[1])
	}
	grid := sp.CreateElement("w:docGrid")
	grid.CreateAttr("w:type", "lines")
	grid.CreateAttr("w:linePitch", "312")
	return sp
}

func mimeForExt(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return "image/" + ext
	}
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func parseXML(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty xml")
	}
	return root, nil
}

func xmlBytes(root *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(root.Copy())
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func itoa(n int) string { return strconv.Itoa(n) }
