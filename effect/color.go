package effect

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB 采用 0-255 的通道值。
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 输出 #rrggbb。
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clampChannel(c.R), clampChannel(c.G), clampChannel(c.B))
}

// Luminance 返回相对亮度（0-1），用于深浅判断。
func (c RGB) Luminance() float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

// ParseHex 解析 #rgb 或 #rrggbb。
func ParseHex(value string) (RGB, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	}
	if len(v) != 6 {
		return RGB{}, fmt.Errorf("颜色 %q 格式错误，应为 #rgb 或 #rrggbb", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("颜色 %q 格式错误: %w", value, err)
	}
	return RGB{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// Darken 将每个通道按 percent 线性缩小：c × (1 - percent/100)，结果夹在 [0,255]。
// 无法解析的颜色按黑色处理。
func Darken(hex string, percent float64) string {
	c, err := ParseHex(hex)
	if err != nil {
		c = RGB{}
	}
	f := 1 - percent/100
	scale := func(v int) int {
		return clampChannel(int(math.Round(float64(v) * f)))
	}
	return RGB{R: scale(c.R), G: scale(c.G), B: scale(c.B)}.Hex()
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
