package renderer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NoneColor leaves a shape unfilled or unstroked.
const NoneColor Color = "none"

// Color is an SVG paint value. It decodes from a color name, an [r, g, b]
// triple or an [r, g, b, opacity] quadruple.
type Color string

func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Color(name)
		return nil
	}
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("color must be a string or an array: %w", err)
	}
	color, err := colorFromParts(parts)
	if err != nil {
		return err
	}
	*c = color
	return nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*c = Color(value.Value)
		return nil
	}
	var parts []float64
	if err := value.Decode(&parts); err != nil {
		return fmt.Errorf("color must be a string or a sequence: %w", err)
	}
	color, err := colorFromParts(parts)
	if err != nil {
		return err
	}
	*c = color
	return nil
}

// Rgb formats an opaque color.
func Rgb(r, g, b uint8) Color {
	return Color(fmt.Sprintf("rgb(%d,%d,%d)", r, g, b))
}

// Rgba formats a color with opacity in [0, 1].
func Rgba(r, g, b uint8, opacity float64) Color {
	return Color(fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, formatNumber(opacity)))
}

func colorFromParts(parts []float64) (Color, error) {
	switch len(parts) {
	case 3:
		return Rgb(uint8(parts[0]), uint8(parts[1]), uint8(parts[2])), nil
	case 4:
		return Rgba(uint8(parts[0]), uint8(parts[1]), uint8(parts[2]), parts[3]), nil
	default:
		return "", fmt.Errorf("color array must have 3 or 4 elements, got %d", len(parts))
	}
}

// formatNumber prints like a default C-style stream: six significant digits.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
