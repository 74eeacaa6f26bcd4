package mockup

import (
	"math"
	"reflect"
	"testing"

	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/geom"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	sw, err := LookupSwatch("navy")
	if err != nil {
		t.Fatalf("查找配色失败: %v", err)
	}
	return NewStore(TShirt(sw))
}

func TestAddTextStaggered(t *testing.T) {
	s := newTestStore(t)
	a := s.AddText()
	b := s.AddText()

	texts := s.Texts()
	if len(texts) != 2 {
		t.Fatalf("期望 2 个文本，实际 %d", len(texts))
	}
	if a.ID == b.ID || a.ID == "" {
		t.Fatalf("id 应唯一且非空: %q %q", a.ID, b.ID)
	}
	if texts[0].Position != (geom.Point{X: 50, Y: 65}) || texts[1].Position != (geom.Point{X: 50, Y: 73}) {
		t.Fatalf("错开位置错误: %+v %+v", texts[0].Position, texts[1].Position)
	}
	if texts[0].Content != "Text 1" || texts[1].Content != "Text 2" {
		t.Fatalf("默认内容错误: %q %q", texts[0].Content, texts[1].Content)
	}
	if s.SelectedID() != b.ID {
		t.Fatalf("第二个文本应被选中，实际 %q", s.SelectedID())
	}
	if texts[0].Color != LightInk {
		t.Fatalf("深色衣服上的默认文字应为浅色，实际 %s", texts[0].Color)
	}
}

func TestAddTextStaggerWraps(t *testing.T) {
	s := newTestStore(t)
	want := []float64{65, 73, 81, 89, 67}
	for i, y := range want {
		item := s.AddText()
		if item.Position.Y != y {
			t.Fatalf("第 %d 个文本 y 期望 %g，实际 %g", i, y, item.Position.Y)
		}
	}
}

func TestSelectionExclusive(t *testing.T) {
	s := newTestStore(t)
	a := s.AddText()
	b := s.AddText()
	if err := s.SelectText(a.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	if err := s.SelectText(b.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	if s.SelectedID() != b.ID {
		t.Fatalf("只应选中 B")
	}
	if err := s.SelectText("missing"); err == nil {
		t.Fatalf("选中不存在的文本应报错")
	}
	if s.SelectedID() != b.ID {
		t.Fatalf("失败的选择不应改变选中项")
	}
	s.Deselect()
	if _, ok := s.Selected(); ok {
		t.Fatalf("取消选择后不应有选中项")
	}
}

func TestSelectCopiesFields(t *testing.T) {
	s := newTestStore(t)
	a := s.AddText()
	rot := 30.0
	e := effect.ThreeD
	if _, err := s.UpdateSelected(TextPatch{Rotation: &rot, Effect: &e}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	s.AddText()
	if err := s.SelectText(a.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	f := s.Fields()
	if f.Rotation != 30 || f.Effect != effect.ThreeD || f.Position != a.Position {
		t.Fatalf("编辑字段未复制选中文本属性: %+v", f)
	}
}

func TestRemoveSelectedClearsSelection(t *testing.T) {
	s := newTestStore(t)
	a := s.AddText()
	b := s.AddText()
	if err := s.RemoveText(a.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if s.SelectedID() != b.ID {
		t.Fatalf("删除未选中项不应影响选择")
	}
	if err := s.RemoveText(b.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if s.SelectedID() != "" {
		t.Fatalf("删除选中项后应清除选择")
	}
	if err := s.RemoveText(b.ID); err == nil {
		t.Fatalf("重复删除应报错")
	}
}

func TestUpdateSelectedNoop(t *testing.T) {
	s := newTestStore(t)
	s.AddText()
	s.Deselect()
	before := s.Snapshot()
	content := "changed"
	ok, err := s.UpdateSelected(TextPatch{Content: &content})
	if ok || err != nil {
		t.Fatalf("无选中项时应为 no-op: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatalf("no-op 不应修改状态")
	}
}

func TestUpdateRejectsInvalidPatchAtomically(t *testing.T) {
	s := newTestStore(t)
	item := s.AddText()
	content := "new"
	bad := "not-a-color"
	if _, err := s.UpdateSelected(TextPatch{Content: &content, Color: &bad}); err == nil {
		t.Fatalf("非法颜色应报错")
	}
	got, _ := s.Text(item.ID)
	if got.Content != item.Content {
		t.Fatalf("校验失败时补丁不应部分生效")
	}
}

func TestScaleBounds(t *testing.T) {
	s := newTestStore(t)
	for _, v := range []float64{-10, 0, 0.49, 0.5, 1, 1.7, 2, 2.01, 50, math.NaN()} {
		got := s.SetLogoScale(v)
		if got < LogoScaleMin || got > LogoScaleMax {
			t.Fatalf("logo 缩放 %g 越界: %g", v, got)
		}
		if !s.Surface().LogoBounds(got).Contains(s.Logo().Position) {
			t.Fatalf("缩放后 logo 位置越界: %+v", s.Logo().Position)
		}
	}
	for i := 0; i < 40; i++ {
		s.StepLogoScale(ScaleStep)
	}
	if s.Logo().Scale != LogoScaleMax {
		t.Fatalf("连续增加应停在上限，实际 %g", s.Logo().Scale)
	}

	s.AddText()
	for _, v := range []float64{0, 0.5, 3, 8, 9, -1} {
		v := v
		if _, err := s.UpdateSelected(TextPatch{Scale: &v}); err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		sel, _ := s.Selected()
		if sel.Scale < TextScaleMin || sel.Scale > TextScaleMax {
			t.Fatalf("文本缩放 %g 越界: %g", v, sel.Scale)
		}
	}
}

func TestNonUniformScaleAverages(t *testing.T) {
	s := newTestStore(t)
	s.AddText()
	sx, sy := 3.0, 1.0
	if _, err := s.UpdateSelected(TextPatch{ScaleX: &sx, ScaleY: &sy}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	sel, _ := s.Selected()
	if sel.ScaleX != 3 || sel.ScaleY != 1 || sel.Scale != 2 {
		t.Fatalf("scale 应为两轴平均值: %+v", sel)
	}
	got, ok := s.StepSelectedScale(ScaleStep)
	if !ok || math.Abs(got-2.1) > 1e-9 {
		t.Fatalf("步进后 scale 应为 2.1，实际 %g", got)
	}
}

func TestRotationClamped(t *testing.T) {
	s := newTestStore(t)
	s.AddText()
	for _, v := range []float64{-720, -180, 45, 180, 181} {
		v := v
		if _, err := s.UpdateSelected(TextPatch{Rotation: &v}); err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		sel, _ := s.Selected()
		if sel.Rotation < RotationMin || sel.Rotation > RotationMax {
			t.Fatalf("旋转 %g 越界: %g", v, sel.Rotation)
		}
	}
}

func TestPositionsAlwaysClamped(t *testing.T) {
	s := newTestStore(t)
	item := s.AddText()
	if got := s.MoveLogo(geom.Point{X: 5, Y: 99}); !s.Surface().LogoBounds(1).Contains(got) {
		t.Fatalf("logo 位置越界: %+v", got)
	}
	got, err := s.MoveText(item.ID, geom.Point{X: -20, Y: 150})
	if err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	if got != (geom.Point{X: 10, Y: 90}) {
		t.Fatalf("文本应夹到 (10,90)，实际 %+v", got)
	}
	if s.Fields().Position != got {
		t.Fatalf("选中文本的编辑字段应同步位置")
	}
}

func TestResetIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.SetLogoSource("logo.png")
	s.AddText()
	s.AddText()
	s.SetLogoScale(1.8)
	s.MoveLogo(geom.Point{X: 60, Y: 45})

	s.Reset()
	once := s.Snapshot()
	s.Reset()
	twice := s.Snapshot()
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("两次 reset 应得到相同状态:\n%+v\n%+v", once, twice)
	}
	if once.Logo.Position != DefaultLogoPosition || once.Logo.Scale != 1 {
		t.Fatalf("logo 未恢复默认: %+v", once.Logo)
	}
	if len(once.Texts) != 0 || once.Selected != "" {
		t.Fatalf("文本与选择应被清空")
	}
	if once.Fields.Position != DefaultTextPosition || once.Fields.Effect != effect.None {
		t.Fatalf("编辑字段未恢复默认: %+v", once.Fields)
	}
	if once.Logo.Src != "logo.png" {
		t.Fatalf("reset 不应丢弃 logo 图片")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t)
	s.AddText()
	snap := s.Snapshot()
	content := "edited later"
	if _, err := s.UpdateSelected(TextPatch{Content: &content}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if snap.Texts[0].Content == content {
		t.Fatalf("快照不应受之后编辑的影响")
	}
	if len(snap.Elements()) != 1 {
		t.Fatalf("无 logo 图片时只应有文本元素")
	}
}

func TestSwatchChangeFollowsInk(t *testing.T) {
	s := newTestStore(t)
	white, _ := LookupSwatch("white")
	s.SetSwatch(white)
	if s.Fields().Color != DarkInk {
		t.Fatalf("默认墨色应随衣服颜色切换，实际 %s", s.Fields().Color)
	}
	if s.Surface().LogoArea != TShirt(white).LogoArea {
		t.Fatalf("可打印区域不应变化")
	}
}

func TestLookupSwatchHex(t *testing.T) {
	sw, err := LookupSwatch("#000")
	if err != nil || !sw.Dark || sw.Hex != "#000000" {
		t.Fatalf("#000 应为深色: %+v %v", sw, err)
	}
	if _, err := LookupSwatch("plaid"); err == nil {
		t.Fatalf("未知颜色应报错")
	}
}

func TestGarmentSVGPath(t *testing.T) {
	got := TShirtGarment.Collar.SVG()
	if got != "M 160 40 Q 200 84 240 40" {
		t.Fatalf("unexpected collar path %q", got)
	}
	outline := TShirtGarment.Outline
	if outline[len(outline)-1].Op != 'Z' {
		t.Fatalf("outline must be closed")
	}
}

func TestElementCapabilities(t *testing.T) {
	var logo Element = Logo{Position: geom.Point{X: 50, Y: 35}, Scale: 1.2}
	if _, ok := logo.(Rotatable); ok {
		t.Fatalf("logo must not be rotatable")
	}
	if logo.Center() != (geom.Point{X: 50, Y: 35}) || logo.Factor() != 1.2 || logo.Kind() != KindLogo {
		t.Fatalf("unexpected logo capabilities: %v %v %v", logo.Center(), logo.Factor(), logo.Kind())
	}

	var text Element = TextItem{Position: geom.Point{X: 40, Y: 70}, Scale: 2, Rotation: -12}
	rot, ok := text.(Rotatable)
	if !ok || rot.Angle() != -12 {
		t.Fatalf("text should be rotatable with its rotation")
	}
	if text.Factor() != 2 || text.Kind() != KindText {
		t.Fatalf("unexpected text capabilities: %v %v", text.Factor(), text.Kind())
	}
}
