package mockup

import (
	"fmt"
	"strings"

	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/geom"
)

// Swatch 是服装配色中的一项。Dark 决定默认文字/墨色取浅色还是深色。
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	Dark bool   `json:"dark"`
}

// Palette 是可选的服装颜色，不对外开放配置。
var Palette = []Swatch{
	{Name: "white", Hex: "#ffffff", Dark: false},
	{Name: "black", Hex: "#111827", Dark: true},
	{Name: "navy", Hex: "#1e3a5f", Dark: true},
	{Name: "heather-gray", Hex: "#9ca3af", Dark: false},
	{Name: "red", Hex: "#b91c1c", Dark: true},
	{Name: "forest", Hex: "#14532d", Dark: true},
	{Name: "royal", Hex: "#1d4ed8", Dark: true},
	{Name: "sand", Hex: "#e7d8b8", Dark: false},
}

// 墨色：深色衣服用白色，浅色衣服用近黑色。
const (
	LightInk = "#ffffff"
	DarkInk  = "#111827"
)

// LookupSwatch 按名称查找配色；传入 #hex 时按亮度推断深浅。
func LookupSwatch(value string) (Swatch, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, sw := range Palette {
		if sw.Name == v {
			return sw, nil
		}
	}
	if strings.HasPrefix(v, "#") {
		c, err := effect.ParseHex(v)
		if err != nil {
			return Swatch{}, err
		}
		return Swatch{Name: c.Hex(), Hex: c.Hex(), Dark: c.Luminance() < 0.5}, nil
	}
	return Swatch{}, fmt.Errorf("未知的服装颜色 %q", value)
}

// Surface 是目标产品。可打印区域在选定产品后固定不变，
// 只有每个元素的有效拖拽范围随尺寸变化。
type Surface struct {
	Product  string    `json:"product"`
	Swatch   Swatch    `json:"swatch"`
	LogoArea geom.Area `json:"logoArea"`
	TextArea geom.Area `json:"textArea"`
}

// TShirt 返回 t 恤表面。logo 限于胸口区域，文字可以更靠近下摆与领口。
func TShirt(sw Swatch) Surface {
	return Surface{
		Product:  "tshirt",
		Swatch:   sw,
		LogoArea: geom.Area{Top: 20, Left: 25, Width: 50, Height: 45},
		TextArea: geom.Area{Top: 10, Left: 10, Width: 80, Height: 80},
	}
}

// Ink 返回与衣服颜色对比的默认墨色。
func (s Surface) Ink() string {
	if s.Swatch.Dark {
		return LightInk
	}
	return DarkInk
}

// LogoBounds 返回给定缩放下 logo 中心可到达的范围：可打印区域内缩半个 logo。
func (s Surface) LogoBounds(scale float64) geom.Area {
	halfW, halfH := geom.Canvas.ToPercent(LogoBox*scale/2, LogoBox*scale/2)
	return s.LogoArea.Shrink(halfW, halfH)
}

// TextBounds 返回文本中心可到达的范围。
func (s Surface) TextBounds() geom.Area {
	return s.TextArea
}
