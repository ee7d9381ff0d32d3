package wordml

import (
	"fmt"

	"github.com/beevik/etree"
)

// EMUPerPixel converts 96 dpi pixels to English Metric Units.
const EMUPerPixel = 9525

// Default chart frame, 15cm x 8cm.
const (
	ChartWidthEMU  int64 = 5400000
	ChartHeightEMU int64 = 2880000
)

const (
	uriPicture = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	uriChart   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

// inline builds the wp:inline frame shared by pictures and charts and
// returns it with its a:graphicData child.
func inline(id int, name string, cx, cy int64, uri string) (*etree.Element, *etree.Element) {
	in := etree.NewElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		in.CreateAttr(k, "0")
	}
	ext := in.CreateElement("wp:extent")
	ext.CreateAttr("cx", fmt.Sprint(cx))
	ext.CreateAttr("cy", fmt.Sprint(cy))
	eff := in.CreateElement("wp:effectExtent")
	for _, k := range []string{"l", "t", "r", "b"} {
		eff.CreateAttr(k, "0")
	}
	docPr := in.CreateElement("wp:docPr")
	docPr.CreateAttr("id", itoa(id))
	docPr.CreateAttr("name", name)

	frame := in.CreateElement("wp:cNvGraphicFramePr")
	if uri == uriPicture {
		locks := frame.CreateElement("a:graphicFrameLocks")
		locks.CreateAttr("xmlns:a", nsA)
		locks.CreateAttr("noChangeAspect", "1")
	}

	graphic := in.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", nsA)
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", uri)
	return in, data
}

func imageDrawing(rID string, id int, img *Image) *etree.Element {
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("Picture %d", id)
	}
	in, data := inline(id, name, img.Width, img.Height, uriPicture)

	pic := data.CreateElement("pic:pic")
	pic.CreateAttr("xmlns:pic", nsPic)
	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", itoa(id))
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	blip := fill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", rID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", fmt.Sprint(img.Width))
	ext.CreateAttr("cy", fmt.Sprint(img.Height))
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	drawing := etree.NewElement("w:drawing")
	drawing.AddChild(in)
	return drawing
}

func chartRun(rID string, id int, cx, cy int64) *etree.Element {
	in, data := inline(id, fmt.Sprintf("Chart %d", id), cx, cy, uriChart)
	ref := data.CreateElement("c:chart")
	ref.CreateAttr("xmlns:c", nsC)
	ref.CreateAttr("xmlns:r", nsR)
	ref.CreateAttr("r:id", rID)

	r := etree.NewElement("w:r")
	r.CreateElement("w:drawing").AddChild(in)
	return r
}
