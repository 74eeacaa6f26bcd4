// Package drag 把指针/触摸事件流转换为单个活动元素的位置更新。
//
// 状态只有三种：Idle、DraggingLogo、DraggingText(id)。任一时刻最多一个拖拽会话；
// 全局 move/up 监听只在非 Idle 时挂载，回到 Idle 时立即卸载。
// 拖拽是 1:1 的直接跟随，没有缓冲、节流或缓动。
package drag

import (
	"errors"
	"fmt"

	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
)

var (
	// ErrDragActive 表示已有拖拽进行中，新的按下被拒绝。
	ErrDragActive = errors.New("已有拖拽进行中")
	// ErrNotMounted 表示编辑表面尚无有效尺寸，本次更新被跳过。
	ErrNotMounted = errors.New("编辑表面尚未挂载")
)

// State 是控制器状态。
type State int

const (
	Idle State = iota
	DraggingLogo
	DraggingText
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingLogo:
		return "dragging-logo"
	case DraggingText:
		return "dragging-text"
	default:
		return "unknown"
	}
}

// Target 指向被按下的元素。TextID 为空表示 logo。
type Target struct {
	Kind   mockup.Kind `json:"kind"`
	TextID string      `json:"textId,omitempty"`
}

// Listeners 对应全局 move/up 监听的挂载与卸载。
type Listeners interface {
	Attach()
	Detach()
}

// Session 是一次拖拽会话的只读视图。
type Session struct {
	TargetID string `json:"targetId,omitempty"`
	Active   bool   `json:"active"`
}

// Controller 是拖拽状态机。它不持有元素，只通过传入的 Store 写入位置。
type Controller struct {
	state     State
	textID    string
	listeners Listeners
}

// New 创建控制器；listeners 可为 nil。
func New(listeners Listeners) *Controller {
	return &Controller{listeners: listeners}
}

// State 返回当前状态。
func (c *Controller) State() State { return c.state }

// Session 返回当前拖拽会话。
func (c *Controller) Session() Session {
	return Session{TargetID: c.textID, Active: c.state != Idle}
}

// Down 开始拖拽。按下文本时同时将其设为选中。已有拖拽时返回 ErrDragActive。
func (c *Controller) Down(store *mockup.Store, target Target) error {
	if c.state != Idle {
		return ErrDragActive
	}
	switch target.Kind {
	case mockup.KindLogo:
		c.state = DraggingLogo
		c.textID = ""
	case mockup.KindText:
		if err := store.SelectText(target.TextID); err != nil {
			return err
		}
		c.state = DraggingText
		c.textID = target.TextID
	default:
		return fmt.Errorf("未知的拖拽目标 %q", target.Kind)
	}
	if c.listeners != nil {
		c.listeners.Attach()
	}
	return nil
}

// Move 依据客户端坐标重新计算夹取后的位置，并同步写入存储。
// Idle 时忽略；包围盒未挂载时返回 ErrNotMounted 且不修改位置。
func (c *Controller) Move(store *mockup.Store, clientX, clientY float64, rect geom.Rect) (geom.Point, error) {
	switch c.state {
	case DraggingLogo:
		p, ok := geom.ToPercent(clientX, clientY, rect)
		if !ok {
			return store.Logo().Position, ErrNotMounted
		}
		return store.MoveLogo(p), nil
	case DraggingText:
		p, ok := geom.ToPercent(clientX, clientY, rect)
		if !ok {
			t, _ := store.Text(c.textID)
			return t.Position, ErrNotMounted
		}
		pos, err := store.MoveText(c.textID, p)
		if err != nil {
			// 文本在拖拽中被删除：结束会话。
			c.Up()
			return geom.Point{}, err
		}
		return pos, nil
	default:
		return geom.Point{}, nil
	}
}

// Up 结束拖拽（松开、离开窗口或触摸取消）。Idle 时为 no-op。
func (c *Controller) Up() {
	if c.state == Idle {
		return
	}
	c.state = Idle
	c.textID = ""
	if c.listeners != nil {
		c.listeners.Detach()
	}
}
