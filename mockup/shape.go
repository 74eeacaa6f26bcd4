package mockup

import (
	"strconv"
	"strings"
)

// PathOp 是一段路径指令：M/L 两个坐标，Q 四个坐标，Z 无坐标。
type PathOp struct {
	Op  byte
	Pts []float64
}

// Path 是 400x360 逻辑画布上的一条路径。预览与导出共用同一份数据。
type Path []PathOp

// SVG 返回 SVG path 的 d 属性。
func (p Path) SVG() string {
	var b strings.Builder
	for i, op := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(op.Op)
		for _, v := range op.Pts {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return b.String()
}

// SheenStop 是高光渐变的一个白色色标。
type SheenStop struct {
	Offset  float64 `json:"offset"`
	Opacity float64 `json:"opacity"`
}

// Sheen 是从 X1 到 X2 的水平高光渐变，叠加在整个轮廓上；
// 坐标与路径处于同一逻辑空间，范围之外取端点色标。
type Sheen struct {
	X1, X2 float64
	Stops  []SheenStop
}

// Garment 描述衣服的轮廓、高光与装饰线。
type Garment struct {
	Outline Path
	Sheen   Sheen
	Collar  Path
	Seams   []Path
	Folds   []Path
}

func line(x1, y1, x2, y2 float64) Path {
	return Path{{'M', []float64{x1, y1}}, {'L', []float64{x2, y2}}}
}

func curve(x1, y1, cx, cy, x2, y2 float64) Path {
	return Path{{'M', []float64{x1, y1}}, {'Q', []float64{cx, cy, x2, y2}}}
}

// TShirtGarment 是 t 恤正面。
var TShirtGarment = Garment{
	Outline: Path{
		{'M', []float64{160, 40}},
		{'Q', []float64{200, 75, 240, 40}},
		{'L', []float64{300, 55}},
		{'L', []float64{370, 120}},
		{'L', []float64{335, 152}},
		{'L', []float64{295, 130}},
		{'L', []float64{295, 340}},
		{'L', []float64{105, 340}},
		{'L', []float64{105, 130}},
		{'L', []float64{65, 152}},
		{'L', []float64{30, 120}},
		{'L', []float64{100, 55}},
		{'Z', nil},
	},
	Sheen: Sheen{
		X1:    30,
		X2:    370,
		Stops: []SheenStop{{Offset: 0, Opacity: 0.1}, {Offset: 0.35, Opacity: 0}},
	},
	Collar: curve(160, 40, 200, 84, 240, 40),
	Seams: []Path{
		line(100, 55, 105, 130),
		line(300, 55, 295, 130),
		line(105, 330, 295, 330),
		line(42, 131, 76, 162),
		line(358, 131, 324, 162),
	},
	Folds: []Path{
		curve(130, 250, 138, 285, 132, 320),
		curve(270, 240, 262, 280, 268, 318),
		curve(118, 140, 128, 150, 124, 170),
	},
}
