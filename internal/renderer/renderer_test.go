package renderer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/transport-catalogue/internal/catalogue"
	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/geo"
	"github.com/transport-catalogue/pkg/transit/models"
)

func TestColorDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{in: `"green"`, want: "green"},
		{in: `[255, 160, 0]`, want: "rgb(255,160,0)"},
		{in: `[255, 255, 255, 0.85]`, want: "rgba(255,255,255,0.85)"},
	}
	for _, tt := range tests {
		var c Color
		require.NoError(t, json.Unmarshal([]byte(tt.in), &c), tt.in)
		assert.Equal(t, tt.want, c)

		var y Color
		require.NoError(t, yaml.Unmarshal([]byte(tt.in), &y), tt.in)
		assert.Equal(t, tt.want, y)
	}

	var bad Color
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultRenderSettings()
	require.NoError(t, s.Validate())

	s.ColorPalette = nil
	assert.Error(t, s.Validate())

	s = DefaultRenderSettings()
	s.Width = 0
	assert.Error(t, s.Validate())

	s = DefaultRenderSettings()
	s.Padding = 700
	assert.Error(t, s.Validate())
}

func TestProjector(t *testing.T) {
	points := []geo.Coordinates{
		{Lat: 43.587795, Lng: 39.716901},
		{Lat: 43.581969, Lng: 39.719848},
	}
	p := NewSphereProjector(points, 200, 200, 30)

	// latitude span is the wider one, so it sets the zoom
	top := p.Project(points[0])
	bottom := p.Project(points[1])
	assert.InDelta(t, 30, top.Y, 1e-9)
	assert.InDelta(t, 170, bottom.Y, 1e-6)
	assert.InDelta(t, 30, top.X, 1e-9)
	assert.Less(t, bottom.X, 170.0)
}

func TestProjectorDegenerate(t *testing.T) {
	p := NewSphereProjector(nil, 100, 100, 10)
	assert.Equal(t, Point{X: 10, Y: 10}, p.Project(geo.Coordinates{Lat: 5, Lng: 5}))

	same := []geo.Coordinates{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}}
	p = NewSphereProjector(same, 100, 100, 10)
	assert.Equal(t, Point{X: 10, Y: 10}, p.Project(same[0]))
}

func buildMapCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.Load(&models.Network{
		Stops: []models.Stop{
			{Name: "Rivierskiy most", Latitude: 43.587795, Longitude: 39.716901},
			{Name: "Morskoy vokzal", Latitude: 43.581969, Longitude: 39.719848},
			{Name: "Elektrosety", Latitude: 43.598701, Longitude: 39.730623},
			{Name: "Unused", Latitude: 10, Longitude: 10},
		},
		Buses: []models.Bus{
			{Name: "114", Stops: []string{"Morskoy vokzal", "Rivierskiy most"}},
			{Name: "14", Stops: []string{"Elektrosety", "Rivierskiy most", "Elektrosety"}, IsRoundTrip: true},
			{Name: "empty"},
		},
	}, logger.Nop())
	require.NoError(t, err)
	return cat
}

func TestRenderLayers(t *testing.T) {
	r, err := New(DefaultRenderSettings())
	require.NoError(t, err)

	svg, err := r.Render(buildMapCatalogue(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0" encoding="UTF-8" ?>`))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))

	assert.Equal(t, 2, strings.Count(svg, "<polyline"))
	assert.Equal(t, 3, strings.Count(svg, "<circle"))
	assert.NotContains(t, svg, "Unused")
	assert.NotContains(t, svg, ">empty<")

	// 114 is there-and-back with distinct ends: two labels, each with an underlayer.
	assert.Equal(t, 4, strings.Count(svg, ">114</text>"))
	// 14 is a loop: one label plus underlayer.
	assert.Equal(t, 2, strings.Count(svg, ">14</text>"))
	assert.Equal(t, 2, strings.Count(svg, ">Elektrosety</text>"))

	lastLine := strings.LastIndex(svg, "<polyline")
	firstText := strings.Index(svg, "<text")
	lastText := strings.LastIndex(svg, "<text")
	firstCircle := strings.Index(svg, "<circle")
	assert.Less(t, lastLine, firstText)
	assert.Less(t, firstCircle, lastText)

	// palette cycles in bus name order
	assert.Contains(t, svg, `fill="none" stroke="green"`)
	assert.Contains(t, svg, `fill="none" stroke="rgb(255,160,0)"`)
}

func TestRenderThereAndBackLineReturns(t *testing.T) {
	cat, err := catalogue.Load(&models.Network{
		Stops: []models.Stop{
			{Name: "A", Latitude: 0, Longitude: 0},
			{Name: "B", Latitude: 1, Longitude: 1},
		},
		Buses: []models.Bus{{Name: "1", Stops: []string{"A", "B"}}},
	}, logger.Nop())
	require.NoError(t, err)

	s := DefaultRenderSettings()
	s.Width, s.Height, s.Padding = 100, 100, 10
	r, err := New(s)
	require.NoError(t, err)

	svg, err := r.Render(cat)
	require.NoError(t, err)
	assert.Contains(t, svg, `<polyline points="10,90 90,10 10,90"`)
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "Tom &amp; Jerry &lt;&quot;&apos;&gt;", escapeText(`Tom & Jerry <"'>`))
}
