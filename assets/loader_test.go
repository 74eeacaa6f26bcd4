package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), pngBytes(t, 4, 3), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	f := New(Options{BaseDir: dir})
	img, err := f.Load(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := img.(*image.RGBA); !ok {
		t.Fatalf("expected RGBA image, got %T", img)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0xffff {
		t.Fatalf("expected red pixel preserved")
	}
}

func TestLoadDataURL(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2, 2))
	img, err := New(Options{}).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load data url: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if _, err := New(Options{}).Load(context.Background(), "data:image/png;base64"); err == nil {
		t.Fatalf("expected error for malformed data url")
	}
}

func TestLoadRemote(t *testing.T) {
	payload := pngBytes(t, 3, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	f := New(Options{AllowRemote: true, Timeout: 5 * time.Second})
	if _, err := f.Load(context.Background(), srv.URL+"/logo.png"); err != nil {
		t.Fatalf("load remote: %v", err)
	}
	if _, err := f.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Fatalf("expected error for 404")
	}

	disabled := New(Options{AllowRemote: false})
	if _, err := disabled.Load(context.Background(), srv.URL+"/logo.png"); !errors.Is(err, ErrRemoteDisabled) {
		t.Fatalf("expected ErrRemoteDisabled, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	f := New(Options{BaseDir: t.TempDir()})
	if _, err := f.Load(context.Background(), "  "); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if _, err := f.Load(context.Background(), "missing.png"); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := f.Load(context.Background(), "data:text/plain,hello"); err == nil {
		t.Fatalf("expected decode error for non-image data")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Load(ctx, "missing.png"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConfinedFileSources(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "logos")
	if err := os.MkdirAll(filepath.Join(base, "brand"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "brand", "logo.png"), pngBytes(t, 2, 2), 0o644); err != nil {
		t.Fatalf("write logo: %v", err)
	}
	secret := filepath.Join(root, "secret.png")
	if err := os.WriteFile(secret, pngBytes(t, 2, 2), 0o644); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	f := New(Options{BaseDir: base, Confine: true})
	if _, err := f.Load(context.Background(), "brand/logo.png"); err != nil {
		t.Fatalf("file inside the base dir should load: %v", err)
	}
	rejected := []string{
		secret,
		"../secret.png",
		"brand/../../secret.png",
		"file://" + secret,
		"/etc/shadow",
		"missing.png",
	}
	for _, src := range rejected {
		if _, err := f.Load(context.Background(), src); !errors.Is(err, ErrPathNotAllowed) {
			t.Fatalf("%q: expected ErrPathNotAllowed, got %v", src, err)
		}
	}

	if err := os.Symlink(secret, filepath.Join(base, "link.png")); err == nil {
		if _, err := f.Load(context.Background(), "link.png"); !errors.Is(err, ErrPathNotAllowed) {
			t.Fatalf("symlink escaping the base dir should be rejected, got %v", err)
		}
	}

	noDir := New(Options{Confine: true})
	if _, err := noDir.Load(context.Background(), "brand/logo.png"); !errors.Is(err, ErrPathNotAllowed) {
		t.Fatalf("confined loader without a base dir must reject files, got %v", err)
	}
}
