package template

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"
)

const (
	nsW          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	listIndent   = 420 // twips per nesting level
	listLevels   = 9
	bulletSymbol = "●○■"
)

// Numbering accumulates list definitions for one document. Bullet lists
// share one definition; every ordered list gets its own so it restarts at 1.
type Numbering struct {
	abstracts []*etree.Element
	nums      []*etree.Element
	next      int
	bullet    int
}

// Bullet returns the shared bullet numId, creating it on first use.
func (n *Numbering) Bullet() int {
	if n.bullet == 0 {
		n.bullet = n.add(false)
	}
	return n.bullet
}

// Ordered returns a fresh decimal numId.
func (n *Numbering) Ordered() int {
	return n.add(true)
}

func (n *Numbering) Empty() bool { return len(n.nums) == 0 }

func (n *Numbering) add(ordered bool) int {
	n.next++
	id := n.next

	abs := etree.NewElement("w:abstractNum")
	abs.CreateAttr("w:abstractNumId", itoa(id))
	setVal(abs.CreateElement("w:multiLevelType"), "hybridMultilevel")
	bullets := []rune(bulletSymbol)
	for lvl := range listLevels {
		l := abs.CreateElement("w:lvl")
		l.CreateAttr("w:ilvl", itoa(lvl))
		setVal(l.CreateElement("w:start"), "1")
		if ordered {
			setVal(l.CreateElement("w:numFmt"), "decimal")
			setVal(l.CreateElement("w:lvlText"), fmt.Sprintf("%%%d.", lvl+1))
		} else {
			setVal(l.CreateElement("w:numFmt"), "bullet")
			setVal(l.CreateElement("w:lvlText"), string(bullets[lvl%len(bullets)]))
		}
		setVal(l.CreateElement("w:lvlJc"), "left")
		ind := l.CreateElement("w:pPr").CreateElement("w:ind")
		ind.CreateAttr("w:left", itoa(listIndent*(lvl+1)))
		ind.CreateAttr("w:hanging", itoa(listIndent))
	}
	n.abstracts = append(n.abstracts, abs)

	num := etree.NewElement("w:num")
	num.CreateAttr("w:numId", itoa(id))
	setVal(num.CreateElement("w:abstractNumId"), itoa(id))
	n.nums = append(n.nums, num)
	return id
}

// XML renders numbering.xml. Abstract definitions precede instances.
func (n *Numbering) XML() ([]byte, error) {
	root := etree.NewElement("w:numbering")
	root.CreateAttr("xmlns:w", nsW)
	for _, a := range n.abstracts {
		root.AddChild(a.Copy())
	}
	for _, num := range n.nums {
		root.AddChild(num.Copy())
	}
	return render(root)
}

func render(root *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(root)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setVal(el *etree.Element, v string) { el.CreateAttr("w:val", v) }
