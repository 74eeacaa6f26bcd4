package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/fonts"
	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
	"github.com/ByLCY/mockup/renderer"
)

const (
	backgroundColor = "#f3f4f6"
	outlineWidth    = 1.5
	// blur 没有对应的绘制原语，用围绕偏移点的若干次采样近似。
	blurSamples = 8
)

// Renderer draws mockup snapshots via github.com/tdewolff/canvas.
type Renderer struct {
	fonts      *fonts.Registry
	size       geom.Size
	pixelRatio float64
	page       geom.Page

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer. Zero values fall back to the defaults.
type Options struct {
	Fonts      *fonts.Registry
	Size       geom.Size
	PixelRatio float64
	Page       geom.Page
}

// NewRenderer creates a renderer with the built-in font registry.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fonts:        opts.Fonts,
		size:         opts.Size,
		pixelRatio:   opts.PixelRatio,
		page:         opts.Page,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.fonts == nil {
		r.fonts = fonts.Default()
	}
	if r.size == (geom.Size{}) {
		r.size = geom.Canvas
	}
	if r.pixelRatio == 0 {
		r.pixelRatio = geom.PixelRatio
	}
	if r.page.Name == "" {
		r.page = geom.A4
	}
	return r
}

// Render captures the job and serializes it in the requested format.
func (r *Renderer) Render(job renderer.Job, format renderer.Format) ([]byte, error) {
	switch format {
	case renderer.PNG, renderer.SVG, renderer.PDF:
	default:
		return nil, fmt.Errorf("%w: %q", renderer.ErrUnsupportedFormat, format)
	}
	c, err := r.Capture(job)
	if err != nil {
		return nil, err
	}
	raster, err := r.Rasterize(c)
	if err != nil {
		return nil, err
	}
	switch format {
	case renderer.SVG:
		return r.encodeSVG(raster)
	case renderer.PDF:
		return r.encodePDF(raster, job.Snapshot.Name)
	default:
		return encodePNG(raster)
	}
}

// Capture 按顺序绘制背景、衣服、logo 与全部文本，返回逻辑尺寸的画布。
func (r *Renderer) Capture(job renderer.Job) (*canvas.Canvas, error) {
	if r.size.Width <= 0 || r.size.Height <= 0 {
		return nil, fmt.Errorf("%w: 画布尺寸 %gx%g", renderer.ErrUnavailable, r.size.Width, r.size.Height)
	}
	snap := job.Snapshot
	c := canvas.New(r.size.Width, r.size.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 与预览一致：左上角为原点，y 向下

	ctx.SetFillColor(canvas.Hex(backgroundColor))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(r.size.Width, r.size.Height))

	r.drawGarment(ctx, mockup.TShirtGarment, snap.Surface.Swatch.Hex)

	for _, el := range snap.Elements() {
		switch e := el.(type) {
		case mockup.Logo:
			if job.Logo != nil {
				r.drawLogo(ctx, e, job.Logo)
			}
		case mockup.TextItem:
			if err := r.drawText(ctx, e); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Rasterize 以固定像素比把画布栅格化。
func (r *Renderer) Rasterize(c *canvas.Canvas) (*image.RGBA, error) {
	if r.pixelRatio <= 0 || math.IsNaN(r.pixelRatio) {
		return nil, fmt.Errorf("%w: 像素比 %g", renderer.ErrUnavailable, r.pixelRatio)
	}
	img := rasterizer.Draw(c, canvas.DPMM(r.pixelRatio), canvas.DefaultColorSpace)
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: 栅格化结果为空", renderer.ErrUnavailable)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeSVG 把栅格图嵌入一个与 PNG 像素尺寸相同的 SVG 文档，不重新描述矢量路径。
func (r *Renderer) encodeSVG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: 栅格图为空", renderer.ErrUnavailable)
	}
	// 以 px 为单位声明尺寸，一个 SVG 单位对应一个栅格像素
	opts := svg.DefaultOptions
	opts.SizeUnits = "px"

	var buf bytes.Buffer
	writer := svg.New(&buf, w, h, &opts)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	ctx.DrawImage(0, 0, img, canvas.DPMM(1))
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 SVG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// encodePDF 把栅格图放在单页上：宽度撑满页边距之内，垂直居中。
func (r *Renderer) encodePDF(img image.Image, title string) ([]byte, error) {
	pageW, pageH := r.page.Width.ToMM(), r.page.Height.ToMM()
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: 栅格图为空", renderer.ErrUnavailable)
	}
	x, y, w, _ := r.page.Fit(float64(bounds.Dy()) / float64(bounds.Dx()))

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH, nil)
	if title == "" {
		title = "brand"
	}
	writer.SetInfo(title, "mockup", "", "", "mockup")

	c := canvas.New(pageW, pageH)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	ctx.DrawImage(x, y, img, canvas.DPMM(float64(bounds.Dx())/w))
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawLogo(ctx *canvas.Context, logo mockup.Logo, img image.Image) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	box := mockup.LogoBox * logo.Factor()
	// 等比缩放进 box × box 的方框，与预览的 object-fit: contain 一致
	w, h := box, box
	aspect := float64(bounds.Dy()) / float64(bounds.Dx())
	if aspect > 1 {
		w = box / aspect
	} else {
		h = box * aspect
	}
	ctx.Push()
	defer ctx.Pop()
	r.anchor(ctx, logo)
	ctx.DrawImage(-w/2, -h/2, img, canvas.DPMM(float64(bounds.Dx())/w))
}

// anchor 把原点移到元素中心；只有 Rotatable 的元素才旋转坐标系。调用方负责 Push/Pop。
func (r *Renderer) anchor(ctx *canvas.Context, el mockup.Element) {
	cx, cy := r.size.ToLogical(el.Center())
	ctx.Translate(cx, cy)
	if rot, ok := el.(mockup.Rotatable); ok {
		ctx.Rotate(rot.Angle())
	}
}

// drawText 逐层绘制文本效果：先平移到锚点，再旋转与缩放，最后绘制并恢复。
func (r *Renderer) drawText(ctx *canvas.Context, item mockup.TextItem) error {
	if item.Content == "" {
		return nil
	}
	family, style, err := r.ensureFontFamily(item.Font, item.Weight)
	if err != nil {
		return err
	}
	size := geom.Length{Value: mockup.TextSize}.ToPT()

	ctx.Push()
	defer ctx.Pop()
	r.anchor(ctx, item)
	ctx.Scale(nonZero(item.ScaleX), nonZero(item.ScaleY))

	base := family.Face(size, hexColor(item.Color, 1), style, canvas.FontNormal)
	// 基线下移半个大写字母高度，使文字在锚点处垂直居中
	baseline := base.Metrics().CapHeight / 2

	// 图层按由近及远排列；先画最远的一层，离文字最近的一层最后覆盖在上面，与 text-shadow 一致
	layers := item.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		if layer.Blur > 0 {
			alpha := math.Min(layer.Opacity, layer.Opacity*2/blurSamples)
			face := family.Face(size, hexColor(layer.Color, alpha), style, canvas.FontNormal)
			radius := layer.Blur / 2
			for j := 0; j < blurSamples; j++ {
				a := 2 * math.Pi * float64(j) / blurSamples
				dx, dy := layer.OffsetX+radius*math.Cos(a), layer.OffsetY+radius*math.Sin(a)
				ctx.DrawText(dx, baseline+dy, canvas.NewTextLine(face, item.Content, canvas.Center))
			}
			continue
		}
		face := family.Face(size, hexColor(layer.Color, layer.Opacity), style, canvas.FontNormal)
		ctx.DrawText(layer.OffsetX, baseline+layer.OffsetY, canvas.NewTextLine(face, item.Content, canvas.Center))
	}
	ctx.DrawText(0, baseline, canvas.NewTextLine(base, item.Content, canvas.Center))
	return nil
}

func (r *Renderer) ensureFontFamily(id string, weight int) (*canvas.FontFamily, canvas.FontStyle, error) {
	font := r.fonts.Resolve(id)
	weight = font.NearestWeight(weight)
	key := fmt.Sprintf("%s|%d", font.ID, weight)

	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := fontStyle(weight)
	data := font.Face(weight)
	if len(data) == 0 {
		fallback, fbStyle, err := r.fallback()
		if err != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	family := canvas.NewFontFamily(key)
	if err := family.LoadFont(data, 0, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", key, err)
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

// fallback 在调用方持有 fontMu 时使用。
func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	family := canvas.NewFontFamily("mockup-fallback")
	if err := family.LoadFont(goregular.TTF, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("%w: 无法加载回退字体: %v", renderer.ErrUnavailable, err)
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

// fontStyle 将 CSS 数值字重映射为 canvas 字体样式。
func fontStyle(weight int) canvas.FontStyle {
	switch {
	case weight >= 900:
		return canvas.FontBlack
	case weight >= 800:
		return canvas.FontExtraBold
	case weight >= 700:
		return canvas.FontBold
	case weight >= 600:
		return canvas.FontSemiBold
	case weight >= 500:
		return canvas.FontMedium
	case weight >= 400:
		return canvas.FontRegular
	case weight >= 300:
		return canvas.FontLight
	case weight >= 200:
		return canvas.FontExtraLight
	default:
		return canvas.FontThin
	}
}

func hexColor(hex string, opacity float64) color.Color {
	c, err := effect.ParseHex(hex)
	if err != nil {
		c = effect.RGB{}
	}
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, geom.ClampFloat(opacity, 0, 1))
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
