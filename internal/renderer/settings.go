package renderer

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Point is an x/y pair in SVG user units.
type Point struct {
	X float64
	Y float64
}

// RenderSettings controls the look of the map.
type RenderSettings struct {
	Width             float64    `json:"width" yaml:"width" validate:"gt=0"`
	Height            float64    `json:"height" yaml:"height" validate:"gt=0"`
	Padding           float64    `json:"padding" yaml:"padding" validate:"gte=0"`
	LineWidth         float64    `json:"line_width" yaml:"line_width" validate:"gte=0"`
	StopRadius        float64    `json:"stop_radius" yaml:"stop_radius" validate:"gte=0"`
	BusLabelFontSize  int        `json:"bus_label_font_size" yaml:"bus_label_font_size" validate:"gte=0"`
	BusLabelOffset    [2]float64 `json:"bus_label_offset" yaml:"bus_label_offset"`
	StopLabelFontSize int        `json:"stop_label_font_size" yaml:"stop_label_font_size" validate:"gte=0"`
	StopLabelOffset   [2]float64 `json:"stop_label_offset" yaml:"stop_label_offset"`
	UnderlayerColor   Color      `json:"underlayer_color" yaml:"underlayer_color"`
	UnderlayerWidth   float64    `json:"underlayer_width" yaml:"underlayer_width" validate:"gte=0"`
	ColorPalette      []Color    `json:"color_palette" yaml:"color_palette" validate:"min=1"`
}

var validate = validator.New()

// Validate checks value ranges and that padding leaves room to draw.
func (s RenderSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("render settings: %w", err)
	}
	if 2*s.Padding > s.Width || 2*s.Padding > s.Height {
		return fmt.Errorf("render settings: padding %v does not fit in %vx%v", s.Padding, s.Width, s.Height)
	}
	return nil
}

// DefaultRenderSettings returns the settings used when none are supplied.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		Width:             1200,
		Height:            1200,
		Padding:           50,
		LineWidth:         14,
		StopRadius:        5,
		BusLabelFontSize:  20,
		BusLabelOffset:    [2]float64{7, 15},
		StopLabelFontSize: 20,
		StopLabelOffset:   [2]float64{7, -3},
		UnderlayerColor:   Rgba(255, 255, 255, 0.85),
		UnderlayerWidth:   3,
		ColorPalette:      []Color{"green", Rgb(255, 160, 0), "red"},
	}
}
