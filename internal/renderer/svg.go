package renderer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// A minimal SVG 1.1 writer covering the three shapes the map uses.

type shape interface {
	render(w *bufio.Writer)
}

type pathProps struct {
	fill        Color
	stroke      Color
	strokeWidth float64
	roundCaps   bool
}

func (p pathProps) render(w *bufio.Writer) {
	if p.fill != "" {
		fmt.Fprintf(w, ` fill="%s"`, p.fill)
	}
	if p.stroke != "" {
		fmt.Fprintf(w, ` stroke="%s"`, p.stroke)
	}
	if p.strokeWidth != 0 {
		fmt.Fprintf(w, ` stroke-width="%s"`, formatNumber(p.strokeWidth))
	}
	if p.roundCaps {
		w.WriteString(` stroke-linecap="round" stroke-linejoin="round"`)
	}
}

type circle struct {
	center Point
	radius float64
	pathProps
}

func (c circle) render(w *bufio.Writer) {
	fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s"`, formatNumber(c.center.X), formatNumber(c.center.Y), formatNumber(c.radius))
	c.pathProps.render(w)
	w.WriteString("/>")
}

type polyline struct {
	points []Point
	pathProps
}

func (p polyline) render(w *bufio.Writer) {
	w.WriteString(`<polyline points="`)
	for i, pt := range p.points {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(formatNumber(pt.X))
		w.WriteByte(',')
		w.WriteString(formatNumber(pt.Y))
	}
	w.WriteByte('"')
	p.pathProps.render(w)
	w.WriteString("/>")
}

type text struct {
	position   Point
	offset     Point
	fontSize   int
	fontFamily string
	fontWeight string
	data       string
	pathProps
}

func (t text) render(w *bufio.Writer) {
	w.WriteString("<text")
	t.pathProps.render(w)
	fmt.Fprintf(w, ` x="%s" y="%s" dx="%s" dy="%s" font-size="%d"`,
		formatNumber(t.position.X), formatNumber(t.position.Y),
		formatNumber(t.offset.X), formatNumber(t.offset.Y), t.fontSize)
	if t.fontFamily != "" {
		fmt.Fprintf(w, ` font-family="%s"`, t.fontFamily)
	}
	if t.fontWeight != "" {
		fmt.Fprintf(w, ` font-weight="%s"`, t.fontWeight)
	}
	w.WriteByte('>')
	w.WriteString(escapeText(t.data))
	w.WriteString("</text>")
}

var textEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`"`, "&quot;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

type document struct {
	shapes []shape
}

func (d *document) add(s shape) {
	d.shapes = append(d.shapes, s)
}

func (d *document) render(out io.Writer) error {
	w := bufio.NewWriter(out)
	w.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	w.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">` + "\n")
	for _, s := range d.shapes {
		w.WriteString("  ")
		s.render(w)
		w.WriteByte('\n')
	}
	w.WriteString("</svg>")
	return w.Flush()
}
