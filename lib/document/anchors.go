package document

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Zaphoood/hexhist/lib/util"
	"github.com/antchfx/xmlquery"
)

const ANCHORS_SUFFIX = ".anchors.xml"

// AnchorsPath returns the path of the anchor sidecar belonging to a document
func AnchorsPath(path string) string {
	return strings.TrimSuffix(path, GZIP_SUFFIX) + ANCHORS_SUFFIX
}

type anchorsXML struct {
	XMLName xml.Name    `xml:"anchors"`
	Anchors []anchorXML `xml:"anchor"`
}

type anchorXML struct {
	Name   string `xml:"name,attr"`
	Offset string `xml:"offset,attr"`
}

// ReadAnchors reads every <anchor name="..." offset="..."/> element
func ReadAnchors(r io.Reader) ([]Anchor, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, err
	}
	nodes, err := xmlquery.QueryAll(doc, "//anchor")
	if err != nil {
		return nil, err
	}
	anchors := make([]Anchor, 0, len(nodes))
	for _, node := range nodes {
		name := node.SelectAttr("name")
		if len(name) == 0 {
			return nil, fmt.Errorf("Anchor without name")
		}
		offset, err := util.ParseOffset(node.SelectAttr("offset"))
		if err != nil {
			return nil, AnchorError{name, err}
		}
		anchors = append(anchors, Anchor{Name: name, Offset: offset})
	}
	return anchors, nil
}

func WriteAnchors(w io.Writer, anchors []Anchor) error {
	doc := anchorsXML{Anchors: make([]anchorXML, len(anchors))}
	for i, a := range anchors {
		doc.Anchors[i] = anchorXML{Name: a.Name, Offset: fmt.Sprintf("0x%06X", a.Offset)}
	}
	if err := util.WriteAssert(w, []byte(xml.Header)); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return util.WriteAssert(w, []byte("\n"))
}
