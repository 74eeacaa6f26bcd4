package geom

import (
	"fmt"
	"strings"
)

// 该文件定义逻辑画布尺寸与长度单位换算，预览、导出与 PDF 页面共用。

// Unit 表示长度值的单位。逻辑画布按 mm 处理，零值即 UnitMM。
type Unit int

const (
	UnitMM Unit = iota
	UnitPT
	UnitIN
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4
)

// Length 是带单位的长度。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitIN:
		return l.Value * InToMm
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts the length to points; 字体字号使用 pt。
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

// Size 是逻辑尺寸。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Canvas 是 mockup 的固定逻辑画布：400×360 逻辑单位。
var Canvas = Size{Width: 400, Height: 360}

// PixelRatio 是 PNG 导出的设备像素比。
const PixelRatio = 2

// ToLogical 将百分比坐标映射到逻辑画布坐标。
func (s Size) ToLogical(p Point) (float64, float64) {
	return p.X / 100 * s.Width, p.Y / 100 * s.Height
}

// ToPercent 将逻辑长度换算成占宽/高的百分比，用于元素半宽半高。
func (s Size) ToPercent(w, h float64) (float64, float64) {
	if s.Width <= 0 || s.Height <= 0 {
		return 0, 0
	}
	return w / s.Width * 100, h / s.Height * 100
}

// Pixels 返回按像素比放大后的整数像素尺寸。
func (s Size) Pixels(ratio float64) (int, int) {
	return int(s.Width*ratio + 0.5), int(s.Height*ratio + 0.5)
}

// Page 描述 PDF 页面格式。
type Page struct {
	Name   string
	Width  Length
	Height Length
	Margin Length
}

// A4 是导出 PDF 的默认页面。
var A4 = Page{
	Name:   "a4",
	Width:  Length{Value: 210},
	Height: Length{Value: 297},
	Margin: Length{Value: 10},
}

// Letter 是北美常用的 8.5×11 英寸页面，边距与 A4 相同。
var Letter = Page{
	Name:   "letter",
	Width:  Length{Value: 8.5, Unit: UnitIN},
	Height: Length{Value: 11, Unit: UnitIN},
	Margin: Length{Value: 10},
}

// Pages 列出支持的页面格式。
var Pages = []Page{A4, Letter}

// ParsePage 按名称（不区分大小写）查找页面格式，空字符串返回 A4。
func ParsePage(name string) (Page, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return A4, nil
	}
	for _, p := range Pages {
		if p.Name == name {
			return p, nil
		}
	}
	return Page{}, fmt.Errorf("未知的页面格式 %q", name)
}

// Fit 计算宽高比为 aspect(h/w) 的图像在页面上的放置：宽度铺满页面减去边距，
// 垂直居中，且上下至少保留边距；过高时按高度收缩并水平居中。返回 mm。
func (p Page) Fit(aspect float64) (x, y, w, h float64) {
	pw, ph, m := p.Width.ToMM(), p.Height.ToMM(), p.Margin.ToMM()
	w = pw - 2*m
	h = w * aspect
	if h > ph-2*m {
		h = ph - 2*m
		if aspect > 0 {
			w = h / aspect
		}
	}
	x = (pw - w) / 2
	y = (ph - h) / 2
	if y < m {
		y = m
	}
	return x, y, w, h
}
