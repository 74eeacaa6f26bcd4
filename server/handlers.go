package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/core"
	"github.com/ByLCY/mockup/drag"
	"github.com/ByLCY/mockup/export"
	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
	"github.com/ByLCY/mockup/renderer"
	"github.com/ByLCY/mockup/scene"
)

type (
	// CreateSessionRequest 创建会话；Scene 非空时按场景文件初始化。
	CreateSessionRequest struct {
		Color string `json:"color,omitempty"`
		Name  string `json:"name,omitempty"`
		Logo  string `json:"logo,omitempty"`
		Scene string `json:"scene,omitempty"`
		Data  any    `json:"data,omitempty"`
	}

	SurfaceRequest struct {
		Color string `json:"color"`
	}

	NameRequest struct {
		Name string `json:"name"`
	}

	LogoRequest struct {
		Src      *string     `json:"src,omitempty"`
		Scale    *float64    `json:"scale,omitempty"`
		Position *geom.Point `json:"position,omitempty"`
	}

	StepRequest struct {
		Delta float64 `json:"delta"`
	}

	PointerDownRequest struct {
		Target drag.Target `json:"target"`
	}

	PointerMoveRequest struct {
		ClientX float64   `json:"clientX"`
		ClientY float64   `json:"clientY"`
		Rect    geom.Rect `json:"rect"`
	}

	PointerMoveResponse struct {
		Position geom.Point `json:"position"`
		Skipped  bool       `json:"skipped,omitempty"`
		Drag     string     `json:"drag"`
	}

	MenuRequest struct {
		Open bool `json:"open"`
	}

	ExportRequest struct {
		Format string `json:"format"`
	}

	ExportResponse struct {
		ArtifactID string `json:"artifactId"`
		Filename   string `json:"filename"`
		URL        string `json:"url"`
	}
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	entry := logrus.WithFields(logrus.Fields{"path": r.URL.Path, "status": status})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Debug("request rejected")
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, mockup.ErrTextNotFound),
		errors.Is(err, core.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, drag.ErrDragActive), errors.Is(err, export.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, export.ErrEnvironment), errors.Is(err, export.ErrSerialize):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

type badRequest struct{ err error }

func (e badRequest) Error() string { return "请求格式错误: " + e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return badRequest{err}
	}
	return nil
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// mutate 在会话锁内执行 fn，成功时返回最新状态。
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(store *mockup.Store, ctl *drag.Controller) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.With(fn); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, sess.State())
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, mockup.Palette)
}

func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.opts.Fonts.List())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	var store *mockup.Store
	if req.Scene != "" {
		sc, err := scene.ParseString(req.Scene)
		if err != nil {
			writeError(w, r, badRequest{err})
			return
		}
		if store, err = sc.Build(req.Data); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		sw := mockup.Palette[0]
		if req.Color != "" {
			found, err := mockup.LookupSwatch(req.Color)
			if err != nil {
				writeError(w, r, err)
				return
			}
			sw = found
		}
		store = mockup.NewStore(mockup.TShirt(sw))
	}
	if req.Name != "" {
		store.SetName(req.Name)
	}
	if req.Logo != "" {
		store.SetLogoSource(req.Logo)
	}

	sess := s.sessions.Create(store)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sess.State())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, sess.State())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	html, err := s.preview.RenderString(sess.State().Snapshot)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *Server) handleSetSurface(w http.ResponseWriter, r *http.Request) {
	var req SurfaceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		sw, err := mockup.LookupSwatch(req.Color)
		if err != nil {
			return err
		}
		store.SetSwatch(sw)
		return nil
	})
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		store.SetName(strings.TrimSpace(req.Name))
		return nil
	})
}

func (s *Server) handleSetLogo(w http.ResponseWriter, r *http.Request) {
	var req LogoRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		if req.Src != nil {
			store.SetLogoSource(strings.TrimSpace(*req.Src))
		}
		if req.Scale != nil {
			store.SetLogoScale(*req.Scale)
		}
		if req.Position != nil {
			store.MoveLogo(*req.Position)
		}
		return nil
	})
}

func (s *Server) handleStepLogoScale(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		store.StepLogoScale(req.Delta)
		return nil
	})
}

func (s *Server) handlePointerDown(w http.ResponseWriter, r *http.Request) {
	var req PointerDownRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, ctl *drag.Controller) error {
		return ctl.Down(store, req.Target)
	})
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	var req PointerMoveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var resp PointerMoveResponse
	err := sess.With(func(store *mockup.Store, ctl *drag.Controller) error {
		p, err := ctl.Move(store, req.ClientX, req.ClientY, req.Rect)
		resp.Position = p
		resp.Drag = ctl.State().String()
		if errors.Is(err, drag.ErrNotMounted) {
			resp.Skipped = true
			return nil
		}
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) handlePointerUp(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(_ *mockup.Store, ctl *drag.Controller) error {
		ctl.Up()
		return nil
	})
}

func (s *Server) handleAddText(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		store.AddText()
		return nil
	})
}

func (s *Server) handleUpdateText(w http.ResponseWriter, r *http.Request) {
	var patch mockup.TextPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "textID")
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		return store.UpdateText(id, patch)
	})
}

func (s *Server) handleRemoveText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "textID")
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		return store.RemoveText(id)
	})
}

func (s *Server) handleSelectText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "textID")
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		return store.SelectText(id)
	})
}

func (s *Server) handleUpdateSelected(w http.ResponseWriter, r *http.Request) {
	var patch mockup.TextPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		_, err := store.UpdateSelected(patch)
		return err
	})
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		store.Deselect()
		return nil
	})
}

func (s *Server) handleStepSelectedScale(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(store *mockup.Store, _ *drag.Controller) error {
		store.StepSelectedScale(req.Delta)
		return nil
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(store *mockup.Store, ctl *drag.Controller) error {
		ctl.Up()
		store.Reset()
		return nil
	})
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.SetMenu(req.Open)
	render.JSON(w, r, sess.State())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	format, err := renderer.ParseFormat(req.Format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if s.opts.ExportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ExportTimeout)
		defer cancel()
	}
	id, filename, err := sess.Export(ctx, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ExportResponse{ArtifactID: id, Filename: filename, URL: "/api/v1/artifacts/" + id})
}

// handleDownload 返回产物并立即释放，同一产物只能下载一次。
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.opts.Artifacts == nil {
		writeError(w, r, core.ErrArtifactNotFound)
		return
	}
	id := chi.URLParam(r, "artifactID")
	artifact, err := s.opts.Artifacts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() {
		if err := s.opts.Artifacts.Release(context.WithoutCancel(r.Context()), id); err != nil {
			logrus.WithField("artifact_id", id).WithError(err).Warn("failed to release artifact")
		}
	}()

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(artifact.Size()))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

func (s *Server) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if !sess.DismissToast(chi.URLParam(r, "toastID")) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "通知不存在"})
		return
	}
	render.JSON(w, r, sess.State())
}
