package preview

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  .mockup { position: relative; width: {{.Width}}px; height: {{.Height}}px; background: #f3f4f6; overflow: hidden; user-select: none; }
  .mockup svg { position: absolute; inset: 0; }
  .mockup .area { position: absolute; border: 1px dashed rgba(0, 0, 0, 0.15); pointer-events: none; }
  .mockup .el { position: absolute; cursor: move; white-space: nowrap; line-height: 1; }
  .mockup img.el { object-fit: contain; }
  .mockup .selected { outline: 1px dashed #6366f1; outline-offset: 4px; }
</style>
</head>
<body>
<div class="mockup" data-swatch="{{.Swatch.Name}}">
  <svg viewBox="0 0 {{.Width}} {{.Height}}" width="{{.Width}}" height="{{.Height}}">
    <defs>
      <linearGradient id="sheen" gradientUnits="userSpaceOnUse" x1="{{.Garment.Sheen.X1}}" y1="0" x2="{{.Garment.Sheen.X2}}" y2="0">
        {{- range .Garment.Sheen.Stops}}
        <stop offset="{{.Offset}}" stop-color="#ffffff" stop-opacity="{{.Opacity}}"/>
        {{- end}}
      </linearGradient>
    </defs>
    <path d="{{.Garment.Outline}}" fill="{{.Garment.Fill}}" stroke="{{.Garment.Stroke}}" stroke-width="1.5"/>
    <path d="{{.Garment.Outline}}" fill="url(#sheen)"/>
    <path d="{{.Garment.Collar}}" fill="none" stroke="{{.Garment.Seam}}" stroke-width="3"/>
    {{- range .Garment.Seams}}
    <path d="{{.}}" fill="none" stroke="{{$.Garment.Seam}}" stroke-width="1"/>
    {{- end}}
    {{- range .Garment.Folds}}
    <path d="{{.}}" fill="none" stroke="{{$.Garment.Fold}}" stroke-opacity="0.6" stroke-width="1.2"/>
    {{- end}}
  </svg>
  <div class="area" style="{{.LogoArea}}"></div>
  {{- range .Elements}}
  {{- if eq .Kind "logo"}}
  <img class="el logo" src="{{.Src}}" alt="logo" draggable="false" style="{{.Style}}">
  {{- else}}
  <div class="el text{{if .Selected}} selected{{end}}" data-id="{{.ID}}" style="{{.Style}}">{{.Content}}</div>
  {{- end}}
  {{- end}}
</div>
</body>
</html>
`
