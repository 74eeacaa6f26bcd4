package canvasrenderer

import (
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/mockup/effect"
	"github.com/ByLCY/mockup/mockup"
)

// 衣服路径基于 400x360 的逻辑画布，按实际画布尺寸缩放。
const (
	garmentWidth  = 400.0
	garmentHeight = 360.0
)

func toCanvasPath(p mockup.Path) *canvas.Path {
	out := &canvas.Path{}
	for _, op := range p {
		switch op.Op {
		case 'M':
			out.MoveTo(op.Pts[0], op.Pts[1])
		case 'L':
			out.LineTo(op.Pts[0], op.Pts[1])
		case 'Q':
			out.QuadTo(op.Pts[0], op.Pts[1], op.Pts[2], op.Pts[3])
		case 'Z':
			out.Close()
		}
	}
	return out
}

// drawGarment 绘制衣服：填充与描边、高光渐变、领口、缝线与褶皱。
func (r *Renderer) drawGarment(ctx *canvas.Context, g mockup.Garment, hex string) {
	if hex == "" {
		hex = "#ffffff"
	}
	ctx.Push()
	defer ctx.Pop()
	ctx.Scale(r.size.Width/garmentWidth, r.size.Height/garmentHeight)

	ctx.SetFillColor(hexColor(hex, 1))
	ctx.SetStrokeColor(hexColor(effect.Darken(hex, 15), 1))
	ctx.SetStrokeWidth(outlineWidth)
	ctx.DrawPath(0, 0, toCanvasPath(g.Outline))

	if len(g.Sheen.Stops) > 0 {
		ctx.SetFillGradient(sheenGradient(g.Sheen))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(0, 0, toCanvasPath(g.Outline))
	}

	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(hexColor(effect.Darken(hex, 25), 1))
	ctx.SetStrokeWidth(3)
	ctx.DrawPath(0, 0, toCanvasPath(g.Collar))

	ctx.SetStrokeWidth(1)
	for _, seam := range g.Seams {
		ctx.DrawPath(0, 0, toCanvasPath(seam))
	}

	ctx.SetStrokeColor(hexColor(effect.Darken(hex, 12), 0.6))
	ctx.SetStrokeWidth(1.2)
	for _, fold := range g.Folds {
		ctx.DrawPath(0, 0, toCanvasPath(fold))
	}
}

// sheenGradient 与预览中 userSpaceOnUse 的 linearGradient 使用同一组色标。
func sheenGradient(s mockup.Sheen) *canvas.LinearGradient {
	g := canvas.NewLinearGradient(canvas.Point{X: s.X1}, canvas.Point{X: s.X2})
	for _, stop := range s.Stops {
		g.Add(stop.Offset, canvas.RGBA(1, 1, 1, stop.Opacity))
	}
	return g
}
