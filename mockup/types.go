package mockup

// 该文件定义 mockup 的数据模型，供元素存储、实时预览、导出与调试 JSON 共用。

import (
	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/geom"
)

// Kind 区分可放置元素的变体。
type Kind string

const (
	KindLogo Kind = "logo"
	KindText Kind = "text"
)

// 缩放与旋转范围。
const (
	LogoScaleMin = 0.5
	LogoScaleMax = 2.0
	TextScaleMin = 0.5
	TextScaleMax = 8.0
	RotationMin  = -180.0
	RotationMax  = 180.0
	ScaleStep    = 0.1
)

// LogoBox 是 scale=1 时 logo 占用的逻辑边长（正方形容器）。
const LogoBox = 80.0

// TextSize 是 scale=1 时文本的逻辑字号。
const TextSize = 28.0

// Element 是所有可放置元素共有的能力：可拖拽、可缩放。
type Element interface {
	Kind() Kind
	Center() geom.Point
	Factor() float64
}

// Rotatable 是可选能力，只有文本实现。
type Rotatable interface {
	Element
	Angle() float64
}

// Logo 是唯一的 logo 槽位。Src 为只读的图片地址。
type Logo struct {
	Src      string     `json:"src"`
	Position geom.Point `json:"position"`
	Scale    float64    `json:"scale"`
}

func (l Logo) Kind() Kind         { return KindLogo }
func (l Logo) Center() geom.Point { return l.Position }
func (l Logo) Factor() float64    { return l.Scale }

// TextItem 是一个文本元素。Scale 始终是 ScaleX 与 ScaleY 的平均值。
type TextItem struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Font     string        `json:"font"`
	Color    string        `json:"color"`
	Weight   int           `json:"weight"`
	Effect   effect.Effect `json:"effect"`
	Position geom.Point    `json:"position"`
	Scale    float64       `json:"scale"`
	ScaleX   float64       `json:"scaleX"`
	ScaleY   float64       `json:"scaleY"`
	Rotation float64       `json:"rotation"`
}

func (t TextItem) Kind() Kind         { return KindText }
func (t TextItem) Center() geom.Point { return t.Position }
func (t TextItem) Factor() float64    { return t.Scale }
func (t TextItem) Angle() float64     { return t.Rotation }

// Layers 返回该文本的效果图层，预览与导出都从这里取。
func (t TextItem) Layers() []effect.Layer {
	return effect.Style(t.Effect, t.Color)
}

// Fields 是侧边栏共享的编辑字段；选中文本时从该文本复制而来。
type Fields struct {
	Font     string        `json:"font"`
	Color    string        `json:"color"`
	Weight   int           `json:"weight"`
	Effect   effect.Effect `json:"effect"`
	Position geom.Point    `json:"position"`
	Scale    float64       `json:"scale"`
	ScaleX   float64       `json:"scaleX"`
	ScaleY   float64       `json:"scaleY"`
	Rotation float64       `json:"rotation"`
}

// TextPatch 是对文本的部分更新，nil 字段保持不变。
type TextPatch struct {
	Content  *string        `json:"content,omitempty"`
	Font     *string        `json:"font,omitempty"`
	Color    *string        `json:"color,omitempty"`
	Weight   *int           `json:"weight,omitempty"`
	Effect   *effect.Effect `json:"effect,omitempty"`
	Position *geom.Point    `json:"position,omitempty"`
	Scale    *float64       `json:"scale,omitempty"`
	ScaleX   *float64       `json:"scaleX,omitempty"`
	ScaleY   *float64       `json:"scaleY,omitempty"`
	Rotation *float64       `json:"rotation,omitempty"`
}

// Snapshot 是某一时刻存储状态的值拷贝；导出在开始时获取一次。
type Snapshot struct {
	Name     string     `json:"name"`
	Surface  Surface    `json:"surface"`
	Logo     Logo       `json:"logo"`
	Texts    []TextItem `json:"texts"`
	Selected string     `json:"selected,omitempty"`
	Fields   Fields     `json:"fields"`
}

// Elements 按绘制顺序返回元素：先 logo，再按创建顺序的文本。
func (s Snapshot) Elements() []Element {
	out := make([]Element, 0, 1+len(s.Texts))
	if s.Logo.Src != "" {
		out = append(out, s.Logo)
	}
	for _, t := range s.Texts {
		out = append(out, t)
	}
	return out
}
