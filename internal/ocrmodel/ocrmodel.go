/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package ocrmodel is the engine-agnostic OCR result tree: one Page holds
// Paragraphs holding Lines holding Words, each carrying an axis-aligned
// BoundingBox in OCR pixel space.
package ocrmodel

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Direction is the reading direction of a Word or Line.
type Direction int

const (
	LTR Direction = iota
	RTL
)

// BoundingBox is an axis-aligned box in pixel space, top-left origin
// (OCR convention), right/bottom exclusive of the enclosing rectangle.
type BoundingBox struct {
	Left, Top, Right, Bottom float64
}

// NewBoundingBox builds a box from the four edges, normalizing ordering.
func NewBoundingBox(left, top, right, bottom float64) BoundingBox {
	if right < left {
		left, right = right, left
	}
	if bottom < top {
		top, bottom = bottom, top
	}
	return BoundingBox{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Width returns the box's horizontal extent in pixels.
func (b BoundingBox) Width() float64 { return b.Right - b.Left }

// Height returns the box's vertical extent in pixels.
func (b BoundingBox) Height() float64 { return b.Bottom - b.Top }

// Contains reports whether other is fully inside b.
func (b BoundingBox) Contains(other BoundingBox) bool {
	return other.Left >= b.Left && other.Top >= b.Top &&
		other.Right <= b.Right && other.Bottom <= b.Bottom
}

// Union returns the smallest box containing both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		Left:   min(b.Left, other.Left),
		Top:    min(b.Top, other.Top),
		Right:  max(b.Right, other.Right),
		Bottom: max(b.Bottom, other.Bottom),
	}
}

// IoU returns the intersection-over-union of b and other, in [0,1].
func (b BoundingBox) IoU(other BoundingBox) float64 {
	ix := max(0, min(b.Right, other.Right)-max(b.Left, other.Left))
	iy := max(0, min(b.Bottom, other.Bottom)-max(b.Top, other.Top))
	inter := ix * iy
	if inter <= 0 {
		return 0
	}
	areaB := b.Width() * b.Height()
	areaO := other.Width() * other.Height()
	union := areaB + areaO - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Baseline describes a line's skew as a slope (rise/run) and a vertical
// offset in pixels from the line box's top edge.
type Baseline struct {
	Slope  float64
	Offset float64
}

// StyleHints carries optional recognized font style.
type StyleHints struct {
	Bold   bool
	Italic bool
}

// Word is a single recognized token with its bounding box.
type Word struct {
	Text         string
	BBox         BoundingBox
	Direction    Direction
	LanguageHint string
	Confidence   float32 // 0..1, negative means "not reported"
	Baseline     *Baseline
	Style        StyleHints
}

// Line is an ordered sequence of Words sharing a baseline.
type Line struct {
	BBox     BoundingBox
	Baseline *Baseline
	Words    []Word
}

// Paragraph groups Lines that belong together visually.
type Paragraph struct {
	BBox  BoundingBox
	Lines []Line
}

// Page is one page's OCR result, referenced to a declared DPI.
type Page struct {
	DPI        float64
	WidthPx    float64
	HeightPx   float64
	BBox       BoundingBox
	Paragraphs []Paragraph
}

// Validate checks the tree invariants from spec §3: every word's box is
// contained in its line's box, which is contained in the paragraph's box,
// which is contained in the page's box; text has no NUL and is valid UTF-8.
func (p Page) Validate() error {
	for pi, para := range p.Paragraphs {
		if !p.BBox.Contains(para.BBox) {
			return errors.Errorf("ocrmodel: paragraph %d bbox %v escapes page bbox %v", pi, para.BBox, p.BBox)
		}
		for li, line := range para.Lines {
			if !para.BBox.Contains(line.BBox) {
				return errors.Errorf("ocrmodel: paragraph %d line %d bbox escapes paragraph bbox", pi, li)
			}
			for wi, w := range line.Words {
				if !line.BBox.Contains(w.BBox) {
					return errors.Errorf("ocrmodel: paragraph %d line %d word %d bbox escapes line bbox", pi, li, wi)
				}
				if strings.ContainsRune(w.Text, 0) {
					return errors.Errorf("ocrmodel: paragraph %d line %d word %d text contains NUL", pi, li, wi)
				}
				if !utf8.ValidString(w.Text) {
					return errors.Errorf("ocrmodel: paragraph %d line %d word %d text is not valid UTF-8", pi, li, wi)
				}
			}
		}
	}
	return nil
}

// Normalize applies Unicode NFC normalization to every word's text in
// place, the same scalar-value form the text layer renderer (§4.3) and the
// sidecar writer (§6) both assume.
func (p *Page) Normalize() {
	for pi := range p.Paragraphs {
		for li := range p.Paragraphs[pi].Lines {
			words := p.Paragraphs[pi].Lines[li].Words
			for wi := range words {
				words[wi].Text = norm.NFC.String(words[wi].Text)
			}
		}
	}
}

// WordsInReadingOrder flattens the tree into document reading order,
// reversing RTL lines' word order so emission and extraction agree with
// the invariant tested in §4.3(b).
func (p Page) WordsInReadingOrder() []Word {
	var out []Word
	for _, para := range p.Paragraphs {
		for _, line := range para.Lines {
			ws := line.Words
			if len(ws) > 0 && ws[0].Direction == RTL {
				rev := make([]Word, len(ws))
				for i, w := range ws {
					rev[len(ws)-1-i] = w
				}
				ws = rev
			}
			out = append(out, ws...)
		}
	}
	return out
}

// PlainText renders the page's words as the sidecar format (§6): words
// separated by single spaces, no trailing form-feed (the pipeline adds
// the inter-page form-feed).
func (p Page) PlainText() string {
	words := p.WordsInReadingOrder()
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
