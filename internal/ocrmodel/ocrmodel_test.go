package ocrmodel

import "testing"

func word(l, t, r, b float64, text string) Word {
	return Word{Text: text, BBox: NewBoundingBox(l, t, r, b)}
}

func TestBoundingBoxContains(t *testing.T) {
	outer := NewBoundingBox(0, 0, 100, 50)
	inner := NewBoundingBox(10, 10, 90, 40)
	if !outer.Contains(inner) {
		t.Fatal("expected outer to contain inner")
	}
	if outer.Contains(NewBoundingBox(-1, 0, 100, 50)) {
		t.Fatal("box escaping left edge must not be contained")
	}
}

func TestBoundingBoxIoU(t *testing.T) {
	a := NewBoundingBox(0, 0, 10, 10)
	b := NewBoundingBox(5, 5, 15, 15)
	got := a.IoU(b)
	want := 25.0 / 175.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("IoU = %v, want %v", got, want)
	}
	if a.IoU(NewBoundingBox(100, 100, 110, 110)) != 0 {
		t.Fatal("disjoint boxes must have IoU 0")
	}
}

func TestPageValidate(t *testing.T) {
	line := Line{BBox: NewBoundingBox(0, 0, 50, 10), Words: []Word{word(0, 0, 20, 10, "Hello")}}
	para := Paragraph{BBox: NewBoundingBox(0, 0, 50, 10), Lines: []Line{line}}
	page := Page{BBox: NewBoundingBox(0, 0, 100, 100), Paragraphs: []Paragraph{para}}
	if err := page.Validate(); err != nil {
		t.Fatalf("expected valid tree, got %v", err)
	}
}

func TestPageValidateRejectsEscapingWord(t *testing.T) {
	line := Line{BBox: NewBoundingBox(0, 0, 50, 10), Words: []Word{word(0, 0, 200, 10, "Hello")}}
	para := Paragraph{BBox: NewBoundingBox(0, 0, 50, 10), Lines: []Line{line}}
	page := Page{BBox: NewBoundingBox(0, 0, 100, 100), Paragraphs: []Paragraph{para}}
	if err := page.Validate(); err == nil {
		t.Fatal("expected error for word escaping its line bbox")
	}
}

func TestWordsInReadingOrderRTL(t *testing.T) {
	w1 := word(0, 0, 10, 10, "one")
	w1.Direction = RTL
	w2 := word(10, 0, 20, 10, "two")
	w2.Direction = RTL
	line := Line{BBox: NewBoundingBox(0, 0, 20, 10), Words: []Word{w1, w2}}
	para := Paragraph{BBox: line.BBox, Lines: []Line{line}}
	page := Page{BBox: NewBoundingBox(0, 0, 20, 10), Paragraphs: []Paragraph{para}}

	got := page.WordsInReadingOrder()
	if len(got) != 2 || got[0].Text != "two" || got[1].Text != "one" {
		t.Fatalf("RTL reading order wrong: %+v", got)
	}
}

func TestPlainText(t *testing.T) {
	line := Line{BBox: NewBoundingBox(0, 0, 50, 10), Words: []Word{
		word(0, 0, 20, 10, "Hello"),
		word(25, 0, 45, 10, "world"),
	}}
	para := Paragraph{BBox: line.BBox, Lines: []Line{line}}
	page := Page{BBox: NewBoundingBox(0, 0, 100, 100), Paragraphs: []Paragraph{para}}
	if got := page.PlainText(); got != "Hello world" {
		t.Fatalf("PlainText = %q", got)
	}
}
