// Package preview 把快照渲染成可直接在浏览器中显示的 HTML 预览。
// 元素绝对定位在 400x360 的画布上，文字效果通过 CSS text-shadow 表达，
// 与导出使用同一份效果图层数据。
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/fonts"
	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
)

// Element 是预览中的一个绝对定位元素。
type Element struct {
	Kind     mockup.Kind
	ID       string
	Content  string
	Src      any // string 或 template.URL
	Style    template.CSS
	Selected bool
}

// View 是模板数据。
type View struct {
	Title    string
	Width    float64
	Height   float64
	Swatch   mockup.Swatch
	Garment  GarmentView
	LogoArea template.CSS
	Elements []Element
}

// GarmentView 是衣服的 SVG 路径与配色。
type GarmentView struct {
	Outline string
	Sheen   mockup.Sheen
	Collar  string
	Seams   []string
	Folds   []string
	Fill    string
	Stroke  string
	Seam    string
	Fold    string
}

// Renderer renders previews with a font registry.
type Renderer struct {
	fonts *fonts.Registry
	tmpl  *template.Template
}

// New creates a preview renderer. reg 为 nil 时使用内置字体表。
func New(reg *fonts.Registry) *Renderer {
	if reg == nil {
		reg = fonts.Default()
	}
	return &Renderer{fonts: reg, tmpl: template.Must(template.New("preview").Parse(pageTemplate))}
}

// Render 输出完整的 HTML 文档。
func (r *Renderer) Render(w io.Writer, snap mockup.Snapshot) error {
	if err := r.tmpl.Execute(w, r.View(snap)); err != nil {
		return fmt.Errorf("渲染预览失败: %w", err)
	}
	return nil
}

// RenderString 是 Render 的便捷形式。
func (r *Renderer) RenderString(snap mockup.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, snap); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// View 计算模板数据。
func (r *Renderer) View(snap mockup.Snapshot) View {
	hex := snap.Surface.Swatch.Hex
	if hex == "" {
		hex = "#ffffff"
	}
	g := mockup.TShirtGarment
	v := View{
		Title:  snap.Name,
		Width:  geom.Canvas.Width,
		Height: geom.Canvas.Height,
		Swatch: snap.Surface.Swatch,
		Garment: GarmentView{
			Outline: g.Outline.SVG(),
			Sheen:   g.Sheen,
			Collar:  g.Collar.SVG(),
			Fill:    hex,
			Stroke:  effect.Darken(hex, 15),
			Seam:    effect.Darken(hex, 25),
			Fold:    effect.Darken(hex, 12),
		},
		LogoArea: areaStyle(snap.Surface.LogoArea),
	}
	if v.Title == "" {
		v.Title = "brand"
	}
	for _, p := range g.Seams {
		v.Garment.Seams = append(v.Garment.Seams, p.SVG())
	}
	for _, p := range g.Folds {
		v.Garment.Folds = append(v.Garment.Folds, p.SVG())
	}

	for _, el := range snap.Elements() {
		switch e := el.(type) {
		case mockup.Logo:
			v.Elements = append(v.Elements, Element{
				Kind:  mockup.KindLogo,
				Src:   logoSource(e.Src),
				Style: LogoStyle(e),
			})
		case mockup.TextItem:
			v.Elements = append(v.Elements, Element{
				Kind:     mockup.KindText,
				ID:       e.ID,
				Content:  e.Content,
				Style:    r.TextStyle(e),
				Selected: e.ID == snap.Selected,
			})
		}
	}
	return v
}

// placement 返回元素的定位与变换：以中心点定位，只有 Rotatable 的元素带 rotate。
func placement(el mockup.Element) (position, transform string) {
	c := el.Center()
	position = fmt.Sprintf("left: %s%%; top: %s%%", num(c.X), num(c.Y))
	transform = "translate(-50%, -50%)"
	if rot, ok := el.(mockup.Rotatable); ok {
		transform += fmt.Sprintf(" rotate(%sdeg)", num(rot.Angle()))
	}
	return position, transform
}

// LogoStyle 返回 logo 的内联样式：以位置为中心，边长 LogoBox*scale。
func LogoStyle(l mockup.Logo) template.CSS {
	position, transform := placement(l)
	size := num(mockup.LogoBox * l.Factor())
	return template.CSS(fmt.Sprintf("%s; width: %spx; height: %spx; transform: %s", position, size, size, transform))
}

// TextStyle 返回文本的内联样式，text-shadow 来自效果图层。
func (r *Renderer) TextStyle(t mockup.TextItem) template.CSS {
	font := r.fonts.Resolve(t.Font)
	position, transform := placement(t)
	parts := []string{
		position,
		fmt.Sprintf("transform: %s scale(%s, %s)", transform, num(t.ScaleX), num(t.ScaleY)),
		"font-family: " + font.CSSFamily(),
		fmt.Sprintf("font-weight: %d", font.NearestWeight(t.Weight)),
		fmt.Sprintf("font-size: %spx", num(mockup.TextSize)),
		"color: " + t.Color,
		"text-shadow: " + effect.CSS(t.Layers()),
	}
	return template.CSS(strings.Join(parts, "; "))
}

func areaStyle(a geom.Area) template.CSS {
	return template.CSS(fmt.Sprintf("left: %s%%; top: %s%%; width: %s%%; height: %s%%",
		num(a.Left), num(a.Top), num(a.Width), num(a.Height)))
}

// logoSource 只信任图片类型的 data URL，其余地址交给模板按 URL 规则转义。
func logoSource(src string) any {
	if strings.HasPrefix(src, "data:image/") {
		return template.URL(src)
	}
	return src
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
