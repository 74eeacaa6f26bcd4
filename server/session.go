package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/core"
	"github.com/ByLCY/mockup/drag"
	"github.com/ByLCY/mockup/export"
	"github.com/ByLCY/mockup/mockup"
	"github.com/ByLCY/mockup/renderer"
)

// MaxToasts 是每个会话保留的最近通知数。
const MaxToasts = 5

// ErrSessionNotFound 表示会话不存在。
var ErrSessionNotFound = errors.New("会话不存在")

// Toast 是一条短暂的成功/失败通知。
type Toast struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"` // success | error
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// Session 是一个编辑会话：元素存储、拖拽状态机、导出菜单与通知。
// store 与 drag 的所有访问都在 mu 下串行执行；导出在 mu 之外运行，
// 因此导出等待资源时编辑仍可继续。
type Session struct {
	ID string

	mu       sync.Mutex
	store    *mockup.Store
	drag     *drag.Controller
	menuOpen bool
	toasts   []Toast
	pipeline *export.Pipeline
}

// State 是会话的 JSON 视图。
type State struct {
	ID       string          `json:"id"`
	Snapshot mockup.Snapshot `json:"snapshot"`
	Drag     string          `json:"drag"`
	DragInfo drag.Session    `json:"dragSession"`
	MenuOpen bool            `json:"menuOpen"`
	Busy     bool            `json:"busy"`
	Toasts   []Toast         `json:"toasts"`
}

// pointerListeners 记录全局 move/up 监听的挂载状态。
type pointerListeners struct {
	log      *logrus.Entry
	attached bool
}

func (l *pointerListeners) Attach() {
	l.attached = true
	l.log.Debug("pointer listeners attached")
}

func (l *pointerListeners) Detach() {
	l.attached = false
	l.log.Debug("pointer listeners detached")
}

func newSession(store *mockup.Store, newPipeline func(id string, n export.Notifier) *export.Pipeline) *Session {
	id := ulid.Make().String()
	s := &Session{
		ID:    id,
		store: store,
		drag:  drag.New(&pointerListeners{log: logrus.WithField("session", id)}),
	}
	s.pipeline = newPipeline(id, s)
	return s
}

// With 在会话锁内执行 fn。
func (s *Session) With(fn func(store *mockup.Store, ctl *drag.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store, s.drag)
}

// State 返回当前状态的拷贝。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	toasts := make([]Toast, len(s.toasts))
	copy(toasts, s.toasts)
	return State{
		ID:       s.ID,
		Snapshot: s.store.Snapshot(),
		Drag:     s.drag.State().String(),
		DragInfo: s.drag.Session(),
		MenuOpen: s.menuOpen,
		Busy:     s.pipeline.Busy(),
		Toasts:   toasts,
	}
}

// SetMenu 打开或关闭导出菜单。
func (s *Session) SetMenu(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuOpen = open
}

// Export 关闭菜单、在锁内取快照，然后在锁外执行导出。
func (s *Session) Export(ctx context.Context, format renderer.Format) (artifactID, filename string, err error) {
	s.mu.Lock()
	s.menuOpen = false
	snap := s.store.Snapshot()
	s.mu.Unlock()

	artifact, err := s.pipeline.Export(ctx, snap, format)
	if err != nil {
		return "", "", err
	}
	return artifact.ID, artifact.Filename, nil
}

// Success implements export.Notifier.
func (s *Session) Success(message string) { s.pushToast("success", message) }

// Failure implements export.Notifier.
func (s *Session) Failure(message string, err error) {
	s.pushToast("error", fmt.Sprintf("%s: %v", message, err))
}

// DismissToast 删除一条通知。
func (s *Session) DismissToast(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) pushToast(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, Toast{ID: ulid.Make().String(), Kind: kind, Message: message, Created: time.Now()})
	if len(s.toasts) > MaxToasts {
		s.toasts = append([]Toast(nil), s.toasts[len(s.toasts)-MaxToasts:]...)
	}
}

// Sessions 是会话注册表。
type Sessions struct {
	mu          sync.RWMutex
	m           map[string]*Session
	newPipeline func(id string, n export.Notifier) *export.Pipeline
	artifacts   core.ArtifactStore
}

// NewSessions creates an empty registry. artifacts 非 nil 时，删除会话会一并释放它未下载的产物。
func NewSessions(newPipeline func(id string, n export.Notifier) *export.Pipeline, artifacts core.ArtifactStore) *Sessions {
	return &Sessions{m: map[string]*Session{}, newPipeline: newPipeline, artifacts: artifacts}
}

// Create 为给定存储创建会话。
func (r *Sessions) Create(store *mockup.Store) *Session {
	s := newSession(store, r.newPipeline)
	r.mu.Lock()
	r.m[s.ID] = s
	r.mu.Unlock()
	logrus.WithField("session", s.ID).Info("session created")
	return s
}

// Get 查找会话。
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete 删除会话；进行中的拖拽随之结束。
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.m[id]
	delete(r.m, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.With(func(_ *mockup.Store, ctl *drag.Controller) error {
		ctl.Up()
		return nil
	})
	log := logrus.WithField("session", id)
	if r.artifacts != nil {
		n, err := r.artifacts.ReleaseSession(context.Background(), id)
		if err != nil {
			log.WithError(err).Warn("failed to release session artifacts")
		} else if n > 0 {
			log.WithField("count", n).Debug("session artifacts released")
		}
	}
	log.Info("session deleted")
	return nil
}
