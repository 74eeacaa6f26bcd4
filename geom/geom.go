// Package geom 提供指针坐标到表面百分比坐标的换算，以及可打印区域的约束。
// 所有函数都是纯函数，编辑方向（拖拽）与导出方向共用。
package geom

import "math"

// Point 是表面百分比坐标（0-100）下的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 是编辑表面在客户端坐标系中的包围盒（像素）。
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mounted 报告包围盒是否已有可用尺寸；未挂载的元素宽高为 0。
func (r Rect) Mounted() bool {
	return r.Width > 0 && r.Height > 0 && !math.IsInf(r.Width, 0) && !math.IsInf(r.Height, 0)
}

// Area 描述可打印区域，以表面包围盒的百分比表示。
type Area struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (a Area) MinX() float64 { return a.Left }
func (a Area) MaxX() float64 { return a.Left + a.Width }
func (a Area) MinY() float64 { return a.Top }
func (a Area) MaxY() float64 { return a.Top + a.Height }

// Center 返回区域中心点。
func (a Area) Center() Point {
	return Point{X: a.Left + a.Width/2, Y: a.Top + a.Height/2}
}

// Shrink 将区域四边各内缩半宽/半高，得到元素中心可以到达的范围。
// 当元素大于区域时收缩为中心线，而不是产生反向区间。
func (a Area) Shrink(halfW, halfH float64) Area {
	halfW = math.Max(halfW, 0)
	halfH = math.Max(halfH, 0)
	out := a
	if 2*halfW >= a.Width {
		out.Left = a.Left + a.Width/2
		out.Width = 0
	} else {
		out.Left = a.Left + halfW
		out.Width = a.Width - 2*halfW
	}
	if 2*halfH >= a.Height {
		out.Top = a.Top + a.Height/2
		out.Height = 0
	} else {
		out.Top = a.Top + halfH
		out.Height = a.Height - 2*halfH
	}
	return out
}

// Contains 判断点是否落在区域内（含边界）。
func (a Area) Contains(p Point) bool {
	return p.X >= a.MinX() && p.X <= a.MaxX() && p.Y >= a.MinY() && p.Y <= a.MaxY()
}

// ToPercent 把客户端坐标换算成表面百分比坐标。
// 包围盒尚未挂载（宽或高为 0）时返回 ok=false，调用方应跳过本次更新。
func ToPercent(clientX, clientY float64, rect Rect) (Point, bool) {
	if !rect.Mounted() {
		return Point{}, false
	}
	p := Point{
		X: (clientX - rect.Left) / rect.Width * 100,
		Y: (clientY - rect.Top) / rect.Height * 100,
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return Point{}, false
	}
	return p, true
}

// Clamp 将点限制在区域内。
func Clamp(p Point, area Area) Point {
	return Point{
		X: ClampFloat(p.X, area.MinX(), area.MaxX()),
		Y: ClampFloat(p.Y, area.MinY(), area.MaxY()),
	}
}

// Locate 组合 ToPercent 与 Clamp，是拖拽移动时的唯一计算。
func Locate(clientX, clientY float64, rect Rect, area Area) (Point, bool) {
	p, ok := ToPercent(clientX, clientY, rect)
	if !ok {
		return Point{}, false
	}
	return Clamp(p, area), true
}

// ClampFloat 将 v 限制在 [lo, hi]；NaN 落到 lo。
func ClampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
