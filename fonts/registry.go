// Package fonts 提供字体注册表：字体 id → 显示名、可用字重与内置字体数据。
// 预览只读取 Family 与 Weights，导出需要真实字形数据。
package fonts

import (
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultID 是未知字体时回退使用的字体。
const DefaultID = "go"

// Font 描述一个可选字体。
type Font struct {
	ID      string `json:"id"`
	Family  string `json:"family"`
	Generic string `json:"generic"` // CSS 通用族：sans-serif / serif / monospace
	Weights []int  `json:"weights"`

	faces map[int][]byte
}

// CSSFamily 返回带通用族回退的 font-family 值。
func (f Font) CSSFamily() string {
	if f.Family == "" {
		return f.Generic
	}
	return "'" + f.Family + "', " + f.Generic
}

// NearestWeight 返回最接近的可用字重；距离相同时取较重者。
func (f Font) NearestWeight(weight int) int {
	if len(f.Weights) == 0 {
		return 400
	}
	best := f.Weights[0]
	for _, w := range f.Weights[1:] {
		if abs(w-weight) < abs(best-weight) || (abs(w-weight) == abs(best-weight) && w > best) {
			best = w
		}
	}
	return best
}

// Face 返回指定字重（就近）的 TTF 数据。
func (f Font) Face(weight int) []byte {
	return f.faces[f.NearestWeight(weight)]
}

// Registry 是只读的字体表。
type Registry struct {
	fonts map[string]Font
}

// Default 返回内置字体表。
func Default() *Registry {
	return NewRegistry(
		newFont("go", "Go", "sans-serif", map[int][]byte{400: goregular.TTF, 500: gomedium.TTF, 700: gobold.TTF}),
		newFont("go-mono", "Go Mono", "monospace", map[int][]byte{400: gomono.TTF, 700: gomonobold.TTF}),
		newFont("latin-modern", "Latin Modern Roman", "serif", map[int][]byte{400: lmroman10regular.TTF, 700: lmroman10bold.TTF}),
		newFont("latin-modern-sans", "Latin Modern Sans", "sans-serif", map[int][]byte{400: lmsans10regular.TTF, 700: lmsans10bold.TTF}),
	)
}

// NewRegistry 以给定字体构建注册表，id 统一小写。
func NewRegistry(list ...Font) *Registry {
	r := &Registry{fonts: make(map[string]Font, len(list))}
	for _, f := range list {
		f.ID = strings.ToLower(f.ID)
		r.fonts[f.ID] = f
	}
	return r
}

// NewFont 构建一个不带字形数据的字体描述，仅供预览使用。
func NewFont(id, family, generic string, weights ...int) Font {
	sort.Ints(weights)
	return Font{ID: id, Family: family, Generic: generic, Weights: weights}
}

func newFont(id, family, generic string, faces map[int][]byte) Font {
	weights := make([]int, 0, len(faces))
	for w := range faces {
		weights = append(weights, w)
	}
	sort.Ints(weights)
	return Font{ID: id, Family: family, Generic: generic, Weights: weights, faces: faces}
}

// Lookup 查找字体。
func (r *Registry) Lookup(id string) (Font, bool) {
	if r == nil {
		return Font{}, false
	}
	f, ok := r.fonts[strings.ToLower(strings.TrimSpace(id))]
	return f, ok
}

// Resolve 查找字体，未知 id 时回退到默认字体；注册表中也没有默认字体时
// 返回仅含通用族的描述（Family 为空，Generic 为 sans-serif）。
func (r *Registry) Resolve(id string) Font {
	if f, ok := r.Lookup(id); ok {
		return f
	}
	if f, ok := r.Lookup(DefaultID); ok {
		return f
	}
	return Font{ID: id, Generic: "sans-serif", Weights: []int{400}}
}

// List 按 id 排序返回全部字体。
func (r *Registry) List() []Font {
	out := make([]Font, 0, len(r.fonts))
	for _, f := range r.fonts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
