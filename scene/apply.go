package scene

import (
	"fmt"
	"strings"

	"github.com/ByLCY/mockup/binding"
	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
)

// Surface 根据场景头部与 color 赋值构建表面。
func (s *Scene) Surface() (mockup.Surface, error) {
	if s == nil {
		return mockup.Surface{}, fmt.Errorf("场景为空")
	}
	if strings.ToLower(s.Product) != "tshirt" {
		return mockup.Surface{}, fmt.Errorf("%s: 不支持的产品 %q（目前仅支持 tshirt）", s.Pos, s.Product)
	}
	sw := mockup.Palette[0]
	for _, st := range s.Statements {
		if st.Assignment != nil && st.Assignment.Key == "color" {
			found, err := mockup.LookupSwatch(st.Assignment.Value.Text())
			if err != nil {
				return mockup.Surface{}, fmt.Errorf("%s: %w", st.Assignment.Pos, err)
			}
			sw = found
		}
	}
	return mockup.TShirt(sw), nil
}

// Build 创建存储并应用场景；data 用于文本中的 ${path} 占位符。
func (s *Scene) Build(data any) (*mockup.Store, error) {
	surface, err := s.Surface()
	if err != nil {
		return nil, err
	}
	store := mockup.NewStore(surface)
	if err := s.Apply(store, data); err != nil {
		return nil, err
	}
	return store, nil
}

// Apply 依次执行场景语句。最后不保留选中项。
func (s *Scene) Apply(store *mockup.Store, data any) error {
	for _, st := range s.Statements {
		var err error
		switch {
		case st.Assignment != nil:
			err = applyAssignment(st.Assignment, store, data)
		case st.Logo != nil:
			err = applyLogo(st.Logo, store)
		case st.Text != nil:
			err = applyText(st.Text, store, data)
		}
		if err != nil {
			return err
		}
	}
	store.Deselect()
	return nil
}

func applyAssignment(a *Assignment, store *mockup.Store, data any) error {
	switch strings.ToLower(a.Key) {
	case "color":
		sw, err := mockup.LookupSwatch(a.Value.Text())
		if err != nil {
			return fmt.Errorf("%s: %w", a.Pos, err)
		}
		store.SetSwatch(sw)
	case "name":
		store.SetName(binding.Interpolate(a.Value.Text(), data))
	default:
		return fmt.Errorf("%s: 未知属性 %q", a.Pos, a.Key)
	}
	return nil
}

func applyLogo(decl *LogoDecl, store *mockup.Store) error {
	store.SetLogoSource(string(decl.Src))
	var at *geom.Point
	for _, opt := range decl.Options {
		if opt.At != nil {
			at = &geom.Point{X: opt.At.X, Y: opt.At.Y}
			continue
		}
		set := opt.Setting
		switch strings.ToLower(set.Key) {
		case "scale":
			v, err := set.Value.Float()
			if err != nil {
				return fmt.Errorf("%s: logo scale: %w", set.Pos, err)
			}
			store.SetLogoScale(v)
		default:
			return fmt.Errorf("%s: logo 不支持选项 %q", set.Pos, set.Key)
		}
	}
	if at != nil {
		store.MoveLogo(*at)
	}
	return nil
}

func applyText(decl *TextDecl, store *mockup.Store, data any) error {
	item := store.AddText()
	content := binding.Interpolate(string(decl.Content), data)
	patch := mockup.TextPatch{Content: &content}
	for _, opt := range decl.Options {
		if opt.At != nil {
			patch.Position = &geom.Point{X: opt.At.X, Y: opt.At.Y}
			continue
		}
		set := opt.Setting
		if err := applySetting(&patch, set); err != nil {
			return fmt.Errorf("%s: %w", set.Pos, err)
		}
	}
	if err := store.UpdateText(item.ID, patch); err != nil {
		return fmt.Errorf("%s: %w", decl.Pos, err)
	}
	return nil
}

func applySetting(patch *mockup.TextPatch, set *Setting) error {
	key := strings.ToLower(set.Key)
	switch key {
	case "font":
		v := set.Value.Text()
		patch.Font = &v
		return nil
	case "color":
		v := set.Value.Text()
		patch.Color = &v
		return nil
	case "effect":
		e, err := effect.Parse(set.Value.Text())
		if err != nil {
			return err
		}
		patch.Effect = &e
		return nil
	}

	v, err := set.Value.Float()
	if err != nil {
		return fmt.Errorf("text %s: %w", key, err)
	}
	switch key {
	case "weight":
		w := int(v)
		patch.Weight = &w
	case "rotate", "rotation":
		patch.Rotation = &v
	case "scale":
		patch.Scale = &v
	case "scalex", "scale-x":
		patch.ScaleX = &v
	case "scaley", "scale-y":
		patch.ScaleY = &v
	default:
		return fmt.Errorf("text 不支持选项 %q", set.Key)
	}
	return nil
}
