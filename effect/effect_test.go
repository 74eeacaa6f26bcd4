package effect

import (
	"strings"
	"testing"
)

func TestThreeDLayers(t *testing.T) {
	layers := Style(ThreeD, "#7c3aed")
	if len(layers) != 4 {
		t.Fatalf("3d 应有 4 层，实际 %d", len(layers))
	}
	prev := 256.0 * 3
	for i, l := range layers {
		want := float64(i + 1)
		if l.OffsetX != want || l.OffsetY != want {
			t.Fatalf("第 %d 层偏移应为 (%g,%g)，实际 (%g,%g)", i, want, want, l.OffsetX, l.OffsetY)
		}
		c, err := ParseHex(l.Color)
		if err != nil {
			t.Fatalf("第 %d 层颜色无效: %v", i, err)
		}
		sum := float64(c.R + c.G + c.B)
		if sum >= prev {
			t.Fatalf("第 %d 层颜色 %s 未继续变暗", i, l.Color)
		}
		prev = sum
	}
	if layers[0].Color == "#000000" {
		t.Fatalf("3d 应使用底色的暗化色，而不是纯黑")
	}
}

func TestNoneIsEmpty(t *testing.T) {
	for _, base := range []string{"#ffffff", "#000", "garbage"} {
		if got := Style(None, base); len(got) != 0 {
			t.Fatalf("none 应返回空列表，实际 %d 层", len(got))
		}
	}
	if CSS(Style(None, "#fff")) != "none" {
		t.Fatalf("空列表的 CSS 应为 none")
	}
}

func TestLayerShapes(t *testing.T) {
	cases := []struct {
		effect Effect
		count  int
	}{
		{Embossed, 2},
		{Debossed, 2},
		{Floating, 1},
		{Extrude, extrudeDepth + 1},
		{SolidBlock, solidBlockDepth + 1},
	}
	for _, tc := range cases {
		if got := len(Style(tc.effect, "#22c55e")); got != tc.count {
			t.Fatalf("%s 期望 %d 层，实际 %d", tc.effect, tc.count, got)
		}
	}

	emb, deb := Style(Embossed, "#22c55e"), Style(Debossed, "#22c55e")
	if emb[0].OffsetX != -deb[0].OffsetX || emb[1].OffsetY != -deb[1].OffsetY {
		t.Fatalf("embossed/debossed 应互为偏移反转: %+v vs %+v", emb, deb)
	}

	solid := Style(SolidBlock, "#22c55e")
	for i := 0; i < solidBlockDepth; i++ {
		if solid[i].Color != solid[0].Color || solid[i].OffsetX != float64(i+1) {
			t.Fatalf("solid-block 第 %d 层应为同色单位步进: %+v", i, solid[i])
		}
	}
	if solid[solidBlockDepth].Blur == 0 {
		t.Fatalf("solid-block 最后一层应为柔和投影")
	}
}

func TestDarken(t *testing.T) {
	if got := Darken("#ffffff", 50); got != "#808080" {
		t.Fatalf("白色暗化 50%% 期望 #808080，实际 %s", got)
	}
	if got := Darken("#ffffff", 150); got != "#000000" {
		t.Fatalf("超过 100%% 应夹到 0，实际 %s", got)
	}
	if got := Darken("#102030", -100); got != "#204060" {
		t.Fatalf("负百分比应提亮，实际 %s", got)
	}
	if got := Darken("#fff", 0); got != "#ffffff" {
		t.Fatalf("短格式应被展开，实际 %s", got)
	}
	if Darken("#7c3aed", 20) != Darken("#7c3aed", 20) {
		t.Fatalf("暗化必须是确定性的")
	}
}

func TestParse(t *testing.T) {
	if e, err := Parse("Solid-Block"); err != nil || e != SolidBlock {
		t.Fatalf("解析 solid-block 失败: %v %v", e, err)
	}
	if e, err := Parse(""); err != nil || e != None {
		t.Fatalf("空值应为 none")
	}
	if _, err := Parse("glow"); err == nil {
		t.Fatalf("未知效果应报错")
	}
}

func TestCSS(t *testing.T) {
	css := CSS(Style(Floating, "#000000"))
	if css != "0px 8px 12px rgba(0, 0, 0, 0.35)" {
		t.Fatalf("floating CSS 错误: %s", css)
	}
	if n := strings.Count(CSS(Style(ThreeD, "#7c3aed")), "rgba("); n != 4 {
		t.Fatalf("3d CSS 应包含 4 个阴影，实际 %d", n)
	}
}

func TestExtrudeUsesBaseShades(t *testing.T) {
	base, _ := ParseHex("#7c3aed")
	layers := Style(Extrude, "#7c3aed")
	prev := base.R + base.G + base.B
	for i, l := range layers {
		if l.Color == "#000000" {
			t.Fatalf("第 %d 层不应使用纯黑", i)
		}
		c, err := ParseHex(l.Color)
		if err != nil {
			t.Fatalf("第 %d 层颜色无效: %v", i, err)
		}
		if c.R > base.R || c.G > base.G || c.B > base.B {
			t.Fatalf("第 %d 层颜色 %s 应是底色的暗化色", i, l.Color)
		}
		if sum := c.R + c.G + c.B; sum >= prev {
			t.Fatalf("第 %d 层颜色 %s 未继续变暗", i, l.Color)
		} else {
			prev = sum
		}
	}
}
