// Package assets 预加载 logo 位图。来源可以是本地路径、http(s) 地址或 data: URL；
// 来源只读，不会被修改或重新上传。
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxBytes 是单个资源允许的最大字节数。
const MaxBytes = 20 << 20

var (
	// ErrRemoteDisabled 表示配置禁止加载远程资源。
	ErrRemoteDisabled = errors.New("远程资源已禁用")
	// ErrEmptySource 表示没有提供资源地址。
	ErrEmptySource = errors.New("资源地址为空")
	// ErrPathNotAllowed 表示本地路径不在允许的目录之内。
	ErrPathNotAllowed = errors.New("不允许读取该本地路径")
)

// Loader 按地址加载图片。
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Options configures a Fetcher.
type Options struct {
	BaseDir     string        // 相对路径的根目录
	Timeout     time.Duration // 单次加载超时，0 表示不限制
	AllowRemote bool
	// Confine 为 true 时只允许 BaseDir 之内的相对路径（含符号链接解析），
	// 绝对路径、file:// 与 ".." 一律拒绝；BaseDir 为空时禁止所有本地文件。
	Confine bool
	Client  *http.Client
}

// Fetcher 是默认的 Loader 实现。
type Fetcher struct {
	opts Options
}

var _ Loader = (*Fetcher)(nil)

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Fetcher{opts: opts}
}

// Load 读取并解码图片，统一转换为 RGBA。
func (f *Fetcher) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	data, err := f.read(ctx, src)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", shorten(src), err)
	}
	logrus.WithFields(logrus.Fields{
		"src":    shorten(src),
		"format": format,
		"size":   img.Bounds().Size().String(),
	}).Debug("logo loaded")
	return toRGBA(img), nil
}

func (f *Fetcher) read(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		if !f.opts.AllowRemote {
			return nil, fmt.Errorf("%w: %s", ErrRemoteDisabled, src)
		}
		return f.fetch(ctx, src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("解析资源地址 %s 失败: %w", src, err)
		}
		return f.readFile(ctx, u.Path)
	default:
		return f.readFile(ctx, src)
	}
}

func (f *Fetcher) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求 %s 失败: %w", src, err)
	}
	resp, err := f.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载图片 %s 失败: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载图片 %s 失败: HTTP %d", src, resp.StatusCode)
	}
	return readLimited(resp.Body, src)
}

func (f *Fetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := f.open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readLimited(file, path)
}

func (f *Fetcher) open(path string) (*os.File, error) {
	if f.opts.Confine {
		// 拒绝时不区分文件是否存在，错误信息不泄露目录结构
		if f.opts.BaseDir == "" || !filepath.IsLocal(path) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotAllowed, shorten(path))
		}
		file, err := os.OpenInRoot(f.opts.BaseDir, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPathNotAllowed, shorten(path))
		}
		return file, nil
	}
	if !filepath.IsAbs(path) && f.opts.BaseDir != "" {
		path = filepath.Join(f.opts.BaseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	return file, nil
}

func readLimited(r io.Reader, src string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("图片 %s 超过 %d 字节", src, MaxBytes)
	}
	return data, nil
}

// decodeDataURL 支持 data:[<mediatype>][;base64],<data>。
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("无效的 data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("解码 data URL 失败: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("解码 data URL 失败: %w", err)
	}
	return []byte(text), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func shorten(src string) string {
	if len(src) > 64 {
		return src[:61] + "..."
	}
	return src
}
