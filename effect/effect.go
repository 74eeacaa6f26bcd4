// Package effect maps a text effect and a base color to an ordered list of
// shadow layers. The live preview turns the list into CSS text-shadow and the
// canvas exporter fills one offset copy of the glyphs per layer, so both paths
// consume exactly the same data.
package effect

import (
	"fmt"
	"strconv"
	"strings"
)

// Effect identifies a text treatment.
type Effect string

const (
	None       Effect = "none"
	ThreeD     Effect = "3d"
	Embossed   Effect = "embossed"
	Floating   Effect = "floating"
	Debossed   Effect = "debossed"
	Extrude    Effect = "extrude"
	SolidBlock Effect = "solid-block"
)

// All lists the supported effects in menu order.
var All = []Effect{None, ThreeD, Embossed, Floating, Debossed, Extrude, SolidBlock}

// Parse normalizes an effect identifier; unknown values are rejected.
func Parse(s string) (Effect, error) {
	v := Effect(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return None, nil
	}
	for _, e := range All {
		if e == v {
			return e, nil
		}
	}
	return None, fmt.Errorf("未知的文字效果 %q", s)
}

// Layer is one shadow copy drawn beneath the text.
// Layers are listed front to back: index 0 sits closest to the glyphs.
type Layer struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

const (
	threeDDepth     = 4
	extrudeDepth    = 6
	solidBlockDepth = 5
)

// Style returns the layer list for an effect over base.
// An unparsable base color is treated as black.
func Style(e Effect, base string) []Layer {
	switch e {
	case ThreeD:
		layers := make([]Layer, 0, threeDDepth)
		for i := 1; i <= threeDDepth; i++ {
			layers = append(layers, Layer{
				OffsetX: float64(i),
				OffsetY: float64(i),
				Color:   Darken(base, float64(10*i)),
				Opacity: 1,
			})
		}
		return layers
	case Extrude:
		layers := make([]Layer, 0, extrudeDepth+1)
		for i := 1; i <= extrudeDepth; i++ {
			layers = append(layers, Layer{
				OffsetX: float64(i) * 0.5,
				OffsetY: float64(i),
				Color:   Darken(base, float64(20+6*i)),
				Opacity: 1,
			})
		}
		// 落地阴影同样取底色的更深一档，而不是纯黑
		return append(layers, Layer{OffsetX: 3, OffsetY: extrudeDepth + 2, Blur: 6, Color: Darken(base, 80), Opacity: 0.3})
	case Embossed:
		return []Layer{
			{OffsetX: -1, OffsetY: -1, Color: "#ffffff", Opacity: 0.6},
			{OffsetX: 1, OffsetY: 1, Color: Darken(base, 50), Opacity: 0.8},
		}
	case Debossed:
		return []Layer{
			{OffsetX: 1, OffsetY: 1, Color: "#ffffff", Opacity: 0.6},
			{OffsetX: -1, OffsetY: -1, Color: Darken(base, 50), Opacity: 0.8},
		}
	case Floating:
		return []Layer{{OffsetX: 0, OffsetY: 8, Blur: 12, Color: "#000000", Opacity: 0.35}}
	case SolidBlock:
		shade := Darken(base, 35)
		layers := make([]Layer, 0, solidBlockDepth+1)
		for i := 1; i <= solidBlockDepth; i++ {
			layers = append(layers, Layer{OffsetX: float64(i), OffsetY: float64(i), Color: shade, Opacity: 1})
		}
		return append(layers, Layer{OffsetX: solidBlockDepth + 2, OffsetY: solidBlockDepth + 2, Blur: 8, Color: "#000000", Opacity: 0.25})
	default:
		return []Layer{}
	}
}

// CSS renders layers as a text-shadow declaration value. Browsers paint the
// first shadow on top, which matches the layer order.
func CSS(layers []Layer) string {
	if len(layers) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(layers))
	for _, l := range layers {
		c, err := ParseHex(l.Color)
		if err != nil {
			c = RGB{}
		}
		parts = append(parts, fmt.Sprintf("%spx %spx %spx rgba(%d, %d, %d, %s)",
			num(l.OffsetX), num(l.OffsetY), num(l.Blur), c.R, c.G, c.B, num(l.Opacity)))
	}
	return strings.Join(parts, ", ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
