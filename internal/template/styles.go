package template

import (
	"strconv"

	"github.com/beevik/etree"
)

// Document fonts and sizes, in points.
const (
	BodyFont    = "宋体"
	CodeFont    = "Consolas"
	BodySize    = 12
	TitleSize   = 22
	CodeSize    = 10.5
	CaptionSize = 12
)

// headingSizes are the point sizes of Heading1..Heading6.
var headingSizes = [6]int{22, 20, 18, 16, 14, 12}

// stylesXML renders styles.xml: document defaults, Normal and Heading1-6.
func stylesXML() ([]byte, error) {
	root := etree.NewElement("w:styles")
	root.CreateAttr("xmlns:w", nsW)

	defaults := root.CreateElement("w:docDefaults")
	rpr := defaults.CreateElement("w:rPrDefault").CreateElement("w:rPr")
	fonts(rpr, BodyFont)
	size(rpr, BodySize)
	lang := rpr.CreateElement("w:lang")
	lang.CreateAttr("w:val", "en-US")
	lang.CreateAttr("w:eastAsia", "zh-CN")
	sp := defaults.CreateElement("w:pPrDefault").CreateElement("w:pPr").CreateElement("w:spacing")
	sp.CreateAttr("w:after", "0")
	sp.CreateAttr("w:line", "240")
	sp.CreateAttr("w:lineRule", "auto")

	normal := style(root, "paragraph", "Normal", "Normal")
	normal.CreateAttr("w:default", "1")
	normal.CreateElement("w:qFormat")
	jc := normal.CreateElement("w:pPr").CreateElement("w:jc")
	setVal(jc, "both")

	for i, pt := range headingSizes {
		level := i + 1
		id := "Heading" + itoa(level)
		s := style(root, "paragraph", id, "heading "+itoa(level))
		setVal(s.CreateElement("w:basedOn"), "Normal")
		setVal(s.CreateElement("w:next"), "Normal")
		s.CreateElement("w:qFormat")
		ppr := s.CreateElement("w:pPr")
		ppr.CreateElement("w:keepNext")
		ppr.CreateElement("w:keepLines")
		sp := ppr.CreateElement("w:spacing")
		sp.CreateAttr("w:before", "240")
		sp.CreateAttr("w:after", "120")
		sp.CreateAttr("w:line", "360")
		sp.CreateAttr("w:lineRule", "auto")
		setVal(ppr.CreateElement("w:outlineLvl"), itoa(i))
		rpr := s.CreateElement("w:rPr")
		fonts(rpr, BodyFont)
		rpr.CreateElement("w:b")
		rpr.CreateElement("w:bCs")
		setVal(rpr.CreateElement("w:color"), "000000")
		size(rpr, pt)
	}
	return render(root)
}

func style(root *etree.Element, typ, id, name string) *etree.Element {
	s := root.CreateElement("w:style")
	s.CreateAttr("w:type", typ)
	s.CreateAttr("w:styleId", id)
	setVal(s.CreateElement("w:name"), name)
	return s
}

func fonts(rpr *etree.Element, font string) {
	f := rpr.CreateElement("w:rFonts")
	f.CreateAttr("w:ascii", font)
	f.CreateAttr("w:eastAsia", font)
	f.CreateAttr("w:hAnsi", font)
	f.CreateAttr("w:cs", font)
}

func size(rpr *etree.Element, pt int) {
	setVal(rpr.CreateElement("w:sz"), itoa(pt*2))
	setVal(rpr.CreateElement("w:szCs"), itoa(pt*2))
}

func itoa(n int) string { return strconv.Itoa(n) }
