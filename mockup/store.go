package mockup

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/geom"
)

// ErrTextNotFound 表示指定 id 的文本元素不存在。
var ErrTextNotFound = errors.New("文本元素不存在")

// 默认值。
var (
	DefaultLogoPosition = geom.Point{X: 50, Y: 35}
	DefaultTextPosition = geom.Point{X: 50, Y: 78}
)

const (
	DefaultFont   = "go"
	DefaultWeight = 700
)

// Store 是元素的内存集合：一个 logo、按创建顺序排列的文本，以及单一选中项。
// 所有修改都是同步的，并在修改点完成夹取，因此任何时刻都不会持有越界的位置或缩放。
// Store 不是并发安全的，由调用方（会话）串行化访问。
type Store struct {
	name     string
	surface  Surface
	logo     Logo
	texts    []TextItem
	selected string
	fields   Fields
	newID    func() string
}

// NewStore 创建处于默认状态的存储。
func NewStore(surface Surface) *Store {
	s := &Store{
		surface: surface,
		newID:   func() string { return ulid.Make().String() },
	}
	s.Reset()
	return s
}

// Name 返回用于导出文件名的标识名称。
func (s *Store) Name() string { return s.name }

// SetName 设置标识名称（例如品牌名）。
func (s *Store) SetName(name string) { s.name = name }

// Surface 返回当前表面。
func (s *Store) Surface() Surface { return s.surface }

// SetSwatch 更换衣服颜色。仍使用旧默认墨色的编辑字段会跟随切换。
func (s *Store) SetSwatch(sw Swatch) {
	oldInk := s.surface.Ink()
	s.surface.Swatch = sw
	if s.fields.Color == oldInk {
		s.fields.Color = s.surface.Ink()
	}
}

// Logo 返回 logo 槽位。
func (s *Store) Logo() Logo { return s.logo }

// SetLogoSource 设置 logo 图片地址；存储不会读取或修改该图片。
func (s *Store) SetLogoSource(src string) { s.logo.Src = src }

// MoveLogo 将 logo 移到 p（夹取后），返回实际位置。
func (s *Store) MoveLogo(p geom.Point) geom.Point {
	s.logo.Position = geom.Clamp(p, s.surface.LogoBounds(s.logo.Scale))
	return s.logo.Position
}

// SetLogoScale 设置 logo 缩放并夹取到 [0.5, 2.0]；缩放变化后位置会重新夹取。
func (s *Store) SetLogoScale(v float64) float64 {
	s.logo.Scale = geom.ClampFloat(v, LogoScaleMin, LogoScaleMax)
	s.logo.Position = geom.Clamp(s.logo.Position, s.surface.LogoBounds(s.logo.Scale))
	return s.logo.Scale
}

// StepLogoScale 按 delta 增减 logo 缩放。
func (s *Store) StepLogoScale(delta float64) float64 {
	return s.SetLogoScale(s.logo.Scale + delta)
}

// Texts 返回文本列表的拷贝。
func (s *Store) Texts() []TextItem {
	out := make([]TextItem, len(s.texts))
	copy(out, s.texts)
	return out
}

// Text 按 id 查找文本。
func (s *Store) Text(id string) (TextItem, bool) {
	if i := s.index(id); i >= 0 {
		return s.texts[i], true
	}
	return TextItem{}, false
}

// Fields 返回共享编辑字段。
func (s *Store) Fields() Fields { return s.fields }

// Selected 返回当前选中的文本。
func (s *Store) Selected() (TextItem, bool) {
	if s.selected == "" {
		return TextItem{}, false
	}
	return s.Text(s.selected)
}

// SelectedID 返回选中文本的 id，未选中时为空。
func (s *Store) SelectedID() string { return s.selected }

// AddText 追加一个默认内容与默认样式的文本，并将其设为选中。
// 纵向位置按 65 + (n·8 mod 30) 错开，避免与已有文本完全重叠。
func (s *Store) AddText() TextItem {
	n := len(s.texts)
	def := s.defaultFields()
	item := TextItem{
		ID:       s.newID(),
		Content:  fmt.Sprintf("Text %d", n+1),
		Font:     def.Font,
		Color:    def.Color,
		Weight:   def.Weight,
		Effect:   def.Effect,
		Scale:    1,
		ScaleX:   1,
		ScaleY:   1,
		Rotation: 0,
	}
	item.Position = geom.Clamp(geom.Point{X: 50, Y: float64(65 + (n*8)%30)}, s.surface.TextBounds())
	s.texts = append(s.texts, item)
	s.selectIndex(len(s.texts) - 1)
	return item
}

// RemoveText 删除文本；若删除的是选中项则清除选择。
func (s *Store) RemoveText(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("删除文本 %s 失败: %w", id, ErrTextNotFound)
	}
	s.texts = append(s.texts[:i], s.texts[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	return nil
}

// SelectText 选中文本，并把它的属性复制到共享编辑字段。
func (s *Store) SelectText(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("选中文本 %s 失败: %w", id, ErrTextNotFound)
	}
	s.selectIndex(i)
	return nil
}

// Deselect 清除选择（点击画布背景）。
func (s *Store) Deselect() { s.selected = "" }

// UpdateSelected 对选中文本应用部分更新；没有选中项时为 no-op 并返回 false。
func (s *Store) UpdateSelected(p TextPatch) (bool, error) {
	if s.selected == "" {
		return false, nil
	}
	if err := s.UpdateText(s.selected, p); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateText 对指定文本应用部分更新。校验失败时整个补丁不生效。
func (s *Store) UpdateText(id string, p TextPatch) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("更新文本 %s 失败: %w", id, ErrTextNotFound)
	}
	next, err := s.applyPatch(s.texts[i], p)
	if err != nil {
		return fmt.Errorf("更新文本 %s 失败: %w", id, err)
	}
	s.texts[i] = next
	if s.selected == id {
		s.fields = fieldsOf(next)
	}
	return nil
}

// StepSelectedScale 按 delta 同时增减选中文本的两个轴向缩放。
func (s *Store) StepSelectedScale(delta float64) (float64, bool) {
	t, ok := s.Selected()
	if !ok {
		return 0, false
	}
	v := t.Scale + delta
	if _, err := s.UpdateSelected(TextPatch{Scale: &v}); err != nil {
		return t.Scale, false
	}
	t, _ = s.Selected()
	return t.Scale, true
}

// MoveText 将文本移到 p（夹取后），返回实际位置。
func (s *Store) MoveText(id string, p geom.Point) (geom.Point, error) {
	i := s.index(id)
	if i < 0 {
		return geom.Point{}, fmt.Errorf("移动文本 %s 失败: %w", id, ErrTextNotFound)
	}
	pos := geom.Clamp(p, s.surface.TextBounds())
	s.texts[i].Position = pos
	if s.selected == id {
		s.fields.Position = pos
	}
	return pos, nil
}

// Reset 一次性恢复全部默认值：logo 位置 {50,35}、缩放 1，编辑字段默认值
// （位置 {50,78}），并清空文本与选择。logo 图片与名称不属于编辑状态，保持不变。
func (s *Store) Reset() {
	s.logo = Logo{Src: s.logo.Src, Position: DefaultLogoPosition, Scale: 1}
	s.texts = []TextItem{}
	s.selected = ""
	s.fields = s.defaultFields()
}

// Snapshot 返回当前状态的值拷贝。
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Name:     s.name,
		Surface:  s.surface,
		Logo:     s.logo,
		Texts:    s.Texts(),
		Selected: s.selected,
		Fields:   s.fields,
	}
}

func (s *Store) defaultFields() Fields {
	return Fields{
		Font:     DefaultFont,
		Color:    s.surface.Ink(),
		Weight:   DefaultWeight,
		Effect:   effect.None,
		Position: DefaultTextPosition,
		Scale:    1,
		ScaleX:   1,
		ScaleY:   1,
		Rotation: 0,
	}
}

func (s *Store) selectIndex(i int) {
	s.selected = s.texts[i].ID
	s.fields = fieldsOf(s.texts[i])
}

func (s *Store) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.texts {
		if s.texts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) applyPatch(t TextItem, p TextPatch) (TextItem, error) {
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Font != nil {
		t.Font = *p.Font
	}
	if p.Color != nil {
		c, err := effect.ParseHex(*p.Color)
		if err != nil {
			return t, err
		}
		t.Color = c.Hex()
	}
	if p.Weight != nil {
		if *p.Weight < 100 || *p.Weight > 900 {
			return t, fmt.Errorf("字重 %d 超出范围 [100, 900]", *p.Weight)
		}
		t.Weight = *p.Weight
	}
	if p.Effect != nil {
		e, err := effect.Parse(string(*p.Effect))
		if err != nil {
			return t, err
		}
		t.Effect = e
	}
	if p.Scale != nil {
		v := geom.ClampFloat(*p.Scale, TextScaleMin, TextScaleMax)
		t.ScaleX, t.ScaleY = v, v
	}
	if p.ScaleX != nil {
		t.ScaleX = geom.ClampFloat(*p.ScaleX, TextScaleMin, TextScaleMax)
	}
	if p.ScaleY != nil {
		t.ScaleY = geom.ClampFloat(*p.ScaleY, TextScaleMin, TextScaleMax)
	}
	t.Scale = (t.ScaleX + t.ScaleY) / 2
	if p.Rotation != nil {
		t.Rotation = geom.ClampFloat(*p.Rotation, RotationMin, RotationMax)
	}
	if p.Position != nil {
		t.Position = geom.Clamp(*p.Position, s.surface.TextBounds())
	}
	return t, nil
}

func fieldsOf(t TextItem) Fields {
	return Fields{
		Font:     t.Font,
		Color:    t.Color,
		Weight:   t.Weight,
		Effect:   t.Effect,
		Position: t.Position,
		Scale:    t.Scale,
		ScaleX:   t.ScaleX,
		ScaleY:   t.ScaleY,
		Rotation: t.Rotation,
	}
}
