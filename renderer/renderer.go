package renderer

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ByLCY/mockup/mockup"
)

var (
	// ErrUnsupportedFormat 表示请求了未知的导出格式。
	ErrUnsupportedFormat = errors.New("不支持的导出格式")
	// ErrUnavailable 表示无法建立绘制画布（尺寸或像素比无效、没有可用字体等）。
	ErrUnavailable = errors.New("绘制环境不可用")
)

// Format 是导出文件格式。
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// Formats 列出全部支持的格式。
var Formats = []Format{PNG, SVG, PDF}

// ParseFormat 解析格式名（大小写不敏感）。
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case PNG, SVG, PDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// MIME 返回格式对应的媒体类型。
func (f Format) MIME() string {
	switch f {
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml"
	case PDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Ext 返回文件扩展名（不含点）。
func (f Format) Ext() string { return string(f) }

// Job 是一次导出所需的全部输入：开始时取得的快照与已预加载的 logo 位图。
// Logo 为 nil 时不绘制 logo。
type Job struct {
	Snapshot mockup.Snapshot
	Logo     image.Image
}

// Renderer 将快照输出为最终文件，例如 PNG、SVG 或 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(job Job, format Format) ([]byte, error)
}
