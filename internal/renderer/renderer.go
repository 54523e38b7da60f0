// Package renderer draws the bus network as an SVG map.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/transport-catalogue/internal/catalogue"
	"github.com/transport-catalogue/internal/geo"
)

const (
	labelFont       = "Verdana"
	busLabelWeight  = "bold"
	stopFill  Color = "white"
	stopLabel Color = "black"
)

// MapRenderer only reads the catalogue.
type MapRenderer struct {
	settings RenderSettings
}

func New(settings RenderSettings) (*MapRenderer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &MapRenderer{settings: settings}, nil
}

func (m *MapRenderer) Settings() RenderSettings {
	return m.settings
}

// Render returns the SVG document for cat.
func (m *MapRenderer) Render(cat *catalogue.Catalogue) (string, error) {
	var sb strings.Builder
	if err := m.RenderTo(&sb, cat); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTo writes the map in four layers: route lines, route labels, stop
// circles and stop labels. Only stops served by a bus are drawn.
func (m *MapRenderer) RenderTo(w io.Writer, cat *catalogue.Catalogue) error {
	var buses []*catalogue.Bus
	for _, bus := range cat.AllBuses() {
		if len(bus.Stops) > 0 {
			buses = append(buses, bus)
		}
	}

	var stops []*catalogue.Stop
	coords := make([]geo.Coordinates, 0)
	for _, stop := range cat.AllStops() {
		if len(cat.BusesForStop(stop)) == 0 {
			continue
		}
		stops = append(stops, stop)
		coords = append(coords, stop.Coordinates)
	}

	s := m.settings
	projector := NewSphereProjector(coords, s.Width, s.Height, s.Padding)

	doc := &document{}
	m.addRouteLines(doc, buses, projector)
	m.addRouteLabels(doc, buses, projector)
	m.addStopCircles(doc, stops, projector)
	m.addStopLabels(doc, stops, projector)

	if err := doc.render(w); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}

func (m *MapRenderer) paletteColor(i int) Color {
	return m.settings.ColorPalette[i%len(m.settings.ColorPalette)]
}

func (m *MapRenderer) addRouteLines(doc *document, buses []*catalogue.Bus, projector SphereProjector) {
	for i, bus := range buses {
		path := bus.PhysicalPath()
		line := polyline{
			points: make([]Point, 0, len(path)),
			pathProps: pathProps{
				fill:        NoneColor,
				stroke:      m.paletteColor(i),
				strokeWidth: m.settings.LineWidth,
				roundCaps:   true,
			},
		}
		for _, stop := range path {
			line.points = append(line.points, projector.Project(stop.Coordinates))
		}
		doc.add(line)
	}
}

func (m *MapRenderer) addRouteLabels(doc *document, buses []*catalogue.Bus, projector SphereProjector) {
	s := m.settings
	for i, bus := range buses {
		label := text{
			offset:     Point{X: s.BusLabelOffset[0], Y: s.BusLabelOffset[1]},
			fontSize:   s.BusLabelFontSize,
			fontFamily: labelFont,
			fontWeight: busLabelWeight,
			data:       bus.Name,
		}

		ends := []*catalogue.Stop{bus.Stops[0]}
		last := bus.Stops[len(bus.Stops)-1]
		if !bus.IsRoundTrip && last != bus.Stops[0] {
			ends = append(ends, last)
		}
		for _, end := range ends {
			label.position = projector.Project(end.Coordinates)
			doc.add(m.underlayer(label))
			label.pathProps = pathProps{fill: m.paletteColor(i)}
			doc.add(label)
		}
	}
}

func (m *MapRenderer) addStopCircles(doc *document, stops []*catalogue.Stop, projector SphereProjector) {
	for _, stop := range stops {
		doc.add(circle{
			center:    projector.Project(stop.Coordinates),
			radius:    m.settings.StopRadius,
			pathProps: pathProps{fill: stopFill},
		})
	}
}

func (m *MapRenderer) addStopLabels(doc *document, stops []*catalogue.Stop, projector SphereProjector) {
	s := m.settings
	for _, stop := range stops {
		label := text{
			position:   projector.Project(stop.Coordinates),
			offset:     Point{X: s.StopLabelOffset[0], Y: s.StopLabelOffset[1]},
			fontSize:   s.StopLabelFontSize,
			fontFamily: labelFont,
			data:       stop.Name,
		}
		doc.add(m.underlayer(label))
		label.pathProps = pathProps{fill: stopLabel}
		doc.add(label)
	}
}

// underlayer is a copy of t drawn beneath it to keep the label readable.
func (m *MapRenderer) underlayer(t text) text {
	t.pathProps = pathProps{
		fill:        m.settings.UnderlayerColor,
		stroke:      m.settings.UnderlayerColor,
		strokeWidth: m.settings.UnderlayerWidth,
		roundCaps:   true,
	}
	return t
}
