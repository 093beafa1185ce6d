// Package hocr parses the hOCR HTML produced by `tesseract ... hocr` into
// an internal/ocrmodel.Page, ported from gardar-ocrchestra's pkg/hocr
// (ParseHOCR/ParseTitle/ParseBoundingBoxFromTitle), trimmed to this
// engine's flatter Paragraph/Line/Word tree (no separate "ocr_carea" area
// level — an area's paragraphs fold directly into the page, and any loose
// lines/words directly under an area become a synthetic paragraph).
package hocr

import (
	"strconv"
	"strings"

	"github.com/inkmethod/ocrsandwich/internal/ocrmodel"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Parse decodes hOCR data for a single page and returns its OCR result
// tree. Callers that invoke tesseract per-page (one image in, one hOCR
// document out) always get exactly one "ocr_page" div; Parse returns the
// first one found.
func Parse(data []byte, dpi float64) (ocrmodel.Page, error) {

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return ocrmodel.Page{}, errors.Wrap(err, "hocr: parsing html")
	}

	pageNode := findByClass(doc, "ocr_page")
	if pageNode == nil {
		return ocrmodel.Page{}, errors.New("hocr: no ocr_page element found")
	}

	page := ocrmodel.Page{DPI: dpi}
	if bb := bboxFromTitle(attrVal(pageNode, "title")); bb != nil {
		page.BBox = *bb
		page.WidthPx = page.BBox.Right
		page.HeightPx = page.BBox.Bottom
	}

	for _, areaNode := range findAllByClass(pageNode, "ocr_carea") {
		page.Paragraphs = append(page.Paragraphs, paragraphsUnder(areaNode)...)
	}
	for _, parNode := range directChildrenByClass(pageNode, "ocr_par") {
		page.Paragraphs = append(page.Paragraphs, paragraphFrom(parNode))
	}
	if loose := looseLinesAndWords(pageNode); loose != nil {
		page.Paragraphs = append(page.Paragraphs, *loose)
	}

	return page, nil
}

// paragraphsUnder collects every paragraph belonging to an ocr_carea node,
// folding any of the area's own loose lines/words into one synthetic
// paragraph appended last.
func paragraphsUnder(areaNode *html.Node) []ocrmodel.Paragraph {
	var out []ocrmodel.Paragraph
	for _, parNode := range findAllByClass(areaNode, "ocr_par") {
		out = append(out, paragraphFrom(parNode))
	}
	if loose := looseLinesAndWords(areaNode); loose != nil {
		out = append(out, *loose)
	}
	return out
}

func paragraphFrom(n *html.Node) ocrmodel.Paragraph {
	para := ocrmodel.Paragraph{}
	if bb := bboxFromTitle(attrVal(n, "title")); bb != nil {
		para.BBox = *bb
	}
	for _, lineNode := range findAllByClass(n, "ocr_line") {
		para.Lines = append(para.Lines, lineFrom(lineNode))
	}
	return para
}

// looseLinesAndWords wraps any ocr_line/ocrx_word nodes that hang directly
// under n (no enclosing ocr_par) into one synthetic paragraph, or returns
// nil when there are none.
func looseLinesAndWords(n *html.Node) *ocrmodel.Paragraph {
	var lines []ocrmodel.Line
	for _, lineNode := range directChildrenByClass(n, "ocr_line") {
		lines = append(lines, lineFrom(lineNode))
	}
	if words := directChildrenByClass(n, "ocrx_word"); len(words) > 0 {
		var ws []ocrmodel.Word
		for _, w := range words {
			ws = append(ws, wordFrom(w))
		}
		lines = append(lines, ocrmodel.Line{BBox: unionWordBoxes(ws), Words: ws})
	}
	if len(lines) == 0 {
		return nil
	}
	para := ocrmodel.Paragraph{Lines: lines}
	for i, l := range lines {
		if i == 0 {
			para.BBox = l.BBox
			continue
		}
		para.BBox = para.BBox.Union(l.BBox)
	}
	return &para
}

func lineFrom(n *html.Node) ocrmodel.Line {
	line := ocrmodel.Line{}
	title := attrVal(n, "title")
	if bb := bboxFromTitle(title); bb != nil {
		line.BBox = *bb
	}
	if bl := baselineFromTitle(title); bl != nil {
		line.Baseline = bl
	}
	for _, wordNode := range findAllByClass(n, "ocrx_word") {
		line.Words = append(line.Words, wordFrom(wordNode))
	}
	return line
}

func wordFrom(n *html.Node) ocrmodel.Word {
	w := ocrmodel.Word{Confidence: -1}
	title := attrVal(n, "title")
	if bb := bboxFromTitle(title); bb != nil {
		w.BBox = *bb
	}
	if conf, ok := titleProps(title)["x_wconf"]; ok && len(conf) > 0 {
		if f, err := strconv.ParseFloat(conf[0], 64); err == nil {
			w.Confidence = float32(f / 100)
		}
	}
	w.LanguageHint = attrVal(n, "lang")
	w.Text = extractText(n)
	return w
}

func unionWordBoxes(ws []ocrmodel.Word) ocrmodel.BoundingBox {
	var bb ocrmodel.BoundingBox
	for i, w := range ws {
		if i == 0 {
			bb = w.BBox
			continue
		}
		bb = bb.Union(w.BBox)
	}
	return bb
}

// titleProps splits an hOCR title attribute ("bbox 1 2 3 4; x_wconf 95")
// into its space-separated value lists keyed by property name.
func titleProps(title string) map[string][]string {
	out := map[string][]string{}
	for _, part := range strings.Split(title, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		out[fields[0]] = fields[1:]
	}
	return out
}

func bboxFromTitle(title string) *ocrmodel.BoundingBox {
	v, ok := titleProps(title)["bbox"]
	if !ok || len(v) < 4 {
		return nil
	}
	x1, _ := strconv.ParseFloat(v[0], 64)
	y1, _ := strconv.ParseFloat(v[1], 64)
	x2, _ := strconv.ParseFloat(v[2], 64)
	y2, _ := strconv.ParseFloat(v[3], 64)
	bb := ocrmodel.NewBoundingBox(x1, y1, x2, y2)
	return &bb
}

// baselineFromTitle parses hOCR's "baseline <slope> <offset>" property.
func baselineFromTitle(title string) *ocrmodel.Baseline {
	v, ok := titleProps(title)["baseline"]
	if !ok || len(v) < 2 {
		return nil
	}
	slope, err1 := strconv.ParseFloat(v[0], 64)
	offset, err2 := strconv.ParseFloat(v[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &ocrmodel.Baseline{Slope: slope, Offset: offset}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return n.Type == html.ElementNode && strings.Contains(attrVal(n, "class"), class)
}

func findByClass(n *html.Node, class string) *html.Node {
	if hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// findAllByClass returns every descendant of n matching class, not
// descending further once a match is found (hOCR elements don't nest
// their own class within themselves).
func findAllByClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if hasClass(node, class) {
			out = append(out, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

// directChildrenByClass returns descendants matching class, stopping
// descent at any of ocr_carea/ocr_par/ocr_line/ocrx_word boundaries so a
// paragraph nested in an area isn't double-counted at the page level.
func directChildrenByClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			c := attrVal(node, "class")
			if strings.Contains(c, "ocr_carea") || strings.Contains(c, "ocr_par") ||
				(class != "ocr_line" && strings.Contains(c, "ocr_line")) ||
				(class != "ocrx_word" && strings.Contains(c, "ocrx_word")) {
				if strings.Contains(c, class) {
					out = append(out, node)
				}
				return
			}
			if strings.Contains(c, class) {
				out = append(out, node)
				return
			}
		}
		for cn := node.FirstChild; cn != nil; cn = cn.NextSibling {
			walk(cn)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return strings.TrimSpace(sb.String())
}
