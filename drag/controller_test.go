package drag

import (
	"errors"
	"testing"

	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
)

type countingListeners struct {
	attached, detached int
}

func (c *countingListeners) Attach() { c.attached++ }
func (c *countingListeners) Detach() { c.detached++ }

func (c *countingListeners) live() int { return c.attached - c.detached }

var surfaceRect = geom.Rect{Left: 0, Top: 0, Width: 400, Height: 360}

func newStore(t *testing.T) *mockup.Store {
	t.Helper()
	sw, err := mockup.LookupSwatch("white")
	if err != nil {
		t.Fatalf("查找配色失败: %v", err)
	}
	return mockup.NewStore(mockup.TShirt(sw))
}

// TestLogoClampedToMinX 将 logo 拖到 x=5（区域外）时应精确夹到 minX。
func TestLogoClampedToMinX(t *testing.T) {
	store := newStore(t)
	c := New(nil)
	if err := c.Down(store, Target{Kind: mockup.KindLogo}); err != nil {
		t.Fatalf("按下失败: %v", err)
	}
	// x=5% → clientX=20，y 保持 35%
	pos, err := c.Move(store, 20, 0.35*360, surfaceRect)
	if err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	minX := store.Surface().LogoBounds(1).MinX()
	if pos.X != minX {
		t.Fatalf("x 应被夹到 minX=%g，实际 %g", minX, pos.X)
	}
	if store.Logo().Position.X != minX {
		t.Fatalf("存储中的位置未同步")
	}
}

func TestClampingInvariantDuringDrag(t *testing.T) {
	store := newStore(t)
	item := store.AddText()
	c := New(nil)
	for _, target := range []Target{{Kind: mockup.KindLogo}, {Kind: mockup.KindText, TextID: item.ID}} {
		if err := c.Down(store, target); err != nil {
			t.Fatalf("按下失败: %v", err)
		}
		for x := -300.0; x <= 700; x += 53 {
			for y := -300.0; y <= 700; y += 47 {
				pos, err := c.Move(store, x, y, surfaceRect)
				if err != nil {
					t.Fatalf("移动失败: %v", err)
				}
				bounds := store.Surface().TextBounds()
				if target.Kind == mockup.KindLogo {
					bounds = store.Surface().LogoBounds(store.Logo().Scale)
				}
				if !bounds.Contains(pos) {
					t.Fatalf("%s 位置 %+v 越界 %+v", target.Kind, pos, bounds)
				}
			}
		}
		c.Up()
	}
}

func TestSingleActiveDrag(t *testing.T) {
	store := newStore(t)
	item := store.AddText()
	l := &countingListeners{}
	c := New(l)

	if err := c.Down(store, Target{Kind: mockup.KindLogo}); err != nil {
		t.Fatalf("按下失败: %v", err)
	}
	if err := c.Down(store, Target{Kind: mockup.KindText, TextID: item.ID}); !errors.Is(err, ErrDragActive) {
		t.Fatalf("拖拽中再次按下应返回 ErrDragActive，实际 %v", err)
	}
	if c.State() != DraggingLogo {
		t.Fatalf("状态不应改变，实际 %s", c.State())
	}
	if l.live() != 1 {
		t.Fatalf("拖拽中应恰好挂载一组监听，实际 %d", l.live())
	}
	c.Up()
	c.Up()
	if l.live() != 0 || l.detached != 1 {
		t.Fatalf("回到 Idle 应卸载监听且只卸载一次: %+v", l)
	}
}

func TestTextDragSelects(t *testing.T) {
	store := newStore(t)
	a := store.AddText()
	store.AddText()
	c := New(nil)
	if err := c.Down(store, Target{Kind: mockup.KindText, TextID: a.ID}); err != nil {
		t.Fatalf("按下失败: %v", err)
	}
	if store.SelectedID() != a.ID {
		t.Fatalf("按下文本应将其选中")
	}
	if s := c.Session(); !s.Active || s.TargetID != a.ID {
		t.Fatalf("会话信息错误: %+v", s)
	}
	pos, err := c.Move(store, 200, 180, surfaceRect)
	if err != nil || pos != (geom.Point{X: 50, Y: 50}) {
		t.Fatalf("1:1 跟随失败: %+v %v", pos, err)
	}
	c.Up()
	if c.Session().Active {
		t.Fatalf("松开后会话应结束")
	}
}

func TestMoveWhileIdleIgnored(t *testing.T) {
	store := newStore(t)
	before := store.Snapshot()
	c := New(nil)
	if _, err := c.Move(store, 0, 0, surfaceRect); err != nil {
		t.Fatalf("Idle 时移动应被忽略: %v", err)
	}
	if store.Logo() != before.Logo {
		t.Fatalf("Idle 时不应修改位置")
	}
}

func TestUnmountedRectSkipsUpdate(t *testing.T) {
	store := newStore(t)
	c := New(nil)
	if err := c.Down(store, Target{Kind: mockup.KindLogo}); err != nil {
		t.Fatalf("按下失败: %v", err)
	}
	before := store.Logo().Position
	if _, err := c.Move(store, 10, 10, geom.Rect{}); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("零尺寸包围盒应返回 ErrNotMounted，实际 %v", err)
	}
	if store.Logo().Position != before {
		t.Fatalf("跳过的更新不应修改位置")
	}
	if c.State() != DraggingLogo {
		t.Fatalf("跳过更新不应结束拖拽")
	}
}

func TestDownUnknownTextRejected(t *testing.T) {
	store := newStore(t)
	l := &countingListeners{}
	c := New(l)
	if err := c.Down(store, Target{Kind: mockup.KindText, TextID: "nope"}); !errors.Is(err, mockup.ErrTextNotFound) {
		t.Fatalf("未知文本应返回 ErrTextNotFound，实际 %v", err)
	}
	if c.State() != Idle || l.attached != 0 {
		t.Fatalf("失败的按下不应进入拖拽或挂载监听")
	}
}

func TestTextRemovedMidDragEndsSession(t *testing.T) {
	store := newStore(t)
	item := store.AddText()
	l := &countingListeners{}
	c := New(l)
	if err := c.Down(store, Target{Kind: mockup.KindText, TextID: item.ID}); err != nil {
		t.Fatalf("按下失败: %v", err)
	}
	if err := store.RemoveText(item.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := c.Move(store, 100, 100, surfaceRect); !errors.Is(err, mockup.ErrTextNotFound) {
		t.Fatalf("期望 ErrTextNotFound，实际 %v", err)
	}
	if c.State() != Idle || l.live() != 0 {
		t.Fatalf("目标消失后应回到 Idle 并卸载监听")
	}
}
