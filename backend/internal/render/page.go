package render

import (
	"html/template"
	"io"

	apperrors "issue-insights/backend/pkg/errors"
)

// PlotlyURL is the plotly.js bundle the page loads
const PlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>
body { font-family: sans-serif; margin: 0 auto; max-width: 1200px; }
.figure { height: 640px; margin-bottom: 24px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range $i, $f := .Figures}}<div class="figure" id="figure-{{$i}}"></div>
{{end}}<script>
{{range $i, $f := .Figures}}Plotly.newPlot("figure-{{$i}}", {{$f.Data}}, {{$f.Layout}});
{{end}}</script>
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	Title     string
	PlotlyURL string
	Figures   []Figure
}

// WritePage writes a self-contained HTML page drawing each figure
func WritePage(w io.Writer, title string, figures ...Figure) error {
	err := page.Execute(w, pageData{Title: title, PlotlyURL: PlotlyURL, Figures: figures})
	if err != nil {
		return apperrors.NewRenderFailed("page", "template execution failed", err)
	}
	return nil
}
