package render

import (
	"fmt"

	"issue-insights/backend/internal/graph"
	apperrors "issue-insights/backend/pkg/errors"
)

// Figure is a plotly figure document. It marshals to the {data, layout}
// shape that Plotly.newPlot accepts.
type Figure struct {
	Name   string     `json:"name"`
	Data   []Trace    `json:"data"`
	Layout PlotLayout `json:"layout"`
}

// Trace is one plotly trace. X and Y hold numbers, strings or nil (a gap
// in a line trace).
type Trace struct {
	Type        string   `json:"type"`
	Name        string   `json:"name,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	X           []any    `json:"x"`
	Y           []any    `json:"y"`
	Text        []string `json:"text,omitempty"`
	HoverInfo   string   `json:"hoverinfo,omitempty"`
	Width       []any    `json:"width,omitempty"`
	Marker      *Marker  `json:"marker,omitempty"`
	Line        *Line    `json:"line,omitempty"`
	ShowLegend  *bool    `json:"showlegend,omitempty"`
}

// Marker styles trace points
type Marker struct {
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
	Line  *Line   `json:"line,omitempty"`
}

// Line styles trace lines
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// PlotLayout is the plotly layout object
type PlotLayout struct {
	Title      string  `json:"title"`
	ShowLegend bool    `json:"showlegend"`
	HoverMode  string  `json:"hovermode,omitempty"`
	BarGap     float64 `json:"bargap,omitempty"`
	Margin     *Margin `json:"margin,omitempty"`
	XAxis      Axis    `json:"xaxis"`
	YAxis      Axis    `json:"yaxis"`
}

// Margin is the plot margin in pixels
type Margin struct {
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
}

// Axis configures one plot axis
type Axis struct {
	Title    string `json:"title,omitempty"`
	ShowGrid bool   `json:"showgrid"`
	ZeroLine bool   `json:"zeroline"`
}

// Series is a named list of points for scatter and line traces
type Series struct {
	Name string
	X    []float64
	Y    []float64
	Text []string
}

// Bins is a histogram: len(Dividers) == len(Counts)+1
type Bins struct {
	Dividers []float64
	Counts   []float64
}

func hidden() *bool {
	b := false
	return &b
}

func floats(v []float64) []any {
	out := make([]any, len(v))
	for i, f := range v {
		out[i] = f
	}
	return out
}

func strs(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}

// NetworkFigure draws the interaction graph. The figure has three traces:
// edge lines, node markers labelled with the node summary, and invisible
// markers at edge midpoints labelled with the edge summary.
func NetworkFigure(g *graph.InteractionGraph, summary graph.Summary, pos Positions) (Figure, error) {
	edges := Trace{
		Type:      "scatter",
		Mode:      "lines",
		HoverInfo: "none",
		X:         make([]any, 0, 3*len(summary.Edges)),
		Y:         make([]any, 0, 3*len(summary.Edges)),
		Line:      &Line{Width: 0.5, Color: "#888"},
	}
	midpoints := Trace{
		Type:       "scatter",
		Mode:       "markers",
		HoverInfo:  "text",
		X:          make([]any, 0, len(summary.Edges)),
		Y:          make([]any, 0, len(summary.Edges)),
		Text:       make([]string, 0, len(summary.Edges)),
		Marker:     &Marker{Size: 0.1, Color: "rgba(0,0,0,0)"},
		ShowLegend: hidden(),
	}
	for _, e := range summary.Edges {
		p0, ok := pos[e.A]
		if !ok {
			return Figure{}, missingPosition(e.A)
		}
		p1, ok := pos[e.B]
		if !ok {
			return Figure{}, missingPosition(e.B)
		}
		edges.X = append(edges.X, p0.X, p1.X, nil)
		edges.Y = append(edges.Y, p0.Y, p1.Y, nil)
		midpoints.X = append(midpoints.X, (p0.X+p1.X)/2)
		midpoints.Y = append(midpoints.Y, (p0.Y+p1.Y)/2)
		midpoints.Text = append(midpoints.Text, e.Label)
	}

	nodes := Trace{
		Type:      "scatter",
		Mode:      "markers",
		HoverInfo: "text",
		X:         make([]any, 0, len(summary.Nodes)),
		Y:         make([]any, 0, len(summary.Nodes)),
		Text:      make([]string, 0, len(summary.Nodes)),
		Marker:    &Marker{Size: 10, Color: "lightblue", Line: &Line{Width: 2}},
	}
	for _, n := range summary.Nodes {
		p, ok := pos[n.ID]
		if !ok {
			return Figure{}, missingPosition(n.ID)
		}
		nodes.X = append(nodes.X, p.X)
		nodes.Y = append(nodes.Y, p.Y)
		nodes.Text = append(nodes.Text, n.Label)
	}

	if len(summary.Nodes) != g.NodeCount() || len(summary.Edges) != g.EdgeCount() {
		return Figure{}, apperrors.NewRenderFailed("network", "summary does not match graph", nil)
	}

	return Figure{
		Name: "network",
		Data: []Trace{edges, nodes, midpoints},
		Layout: PlotLayout{
			Title:     "Interactive Network",
			HoverMode: "closest",
			Margin:    &Margin{B: 20, L: 5, R: 5, T: 40},
		},
	}, nil
}

func missingPosition(id string) error {
	return apperrors.NewRenderFailed("network", fmt.Sprintf("no position for node %q", id), nil)
}

// HistogramFigure draws pre-binned counts as adjacent bars
func HistogramFigure(name, title, xTitle, yTitle string, bins Bins) (Figure, error) {
	if len(bins.Dividers) != len(bins.Counts)+1 {
		return Figure{}, apperrors.NewRenderFailed(name,
			fmt.Sprintf("%d dividers for %d bins", len(bins.Dividers), len(bins.Counts)), nil)
	}

	centers := make([]float64, len(bins.Counts))
	widths := make([]float64, len(bins.Counts))
	for i := range bins.Counts {
		centers[i] = (bins.Dividers[i] + bins.Dividers[i+1]) / 2
		widths[i] = bins.Dividers[i+1] - bins.Dividers[i]
	}

	return Figure{
		Name: name,
		Data: []Trace{{
			Type:   "bar",
			X:      floats(centers),
			Y:      floats(bins.Counts),
			Width:  floats(widths),
			Marker: &Marker{Color: "#4C72B0"},
		}},
		Layout: PlotLayout{
			Title:  title,
			BarGap: 0.02,
			XAxis:  Axis{Title: xTitle, ShowGrid: true},
			YAxis:  Axis{Title: yTitle, ShowGrid: true},
		},
	}, nil
}

// BarFigure draws one horizontal bar per category
func BarFigure(name, title, xTitle, yTitle string, categories []string, values []float64, text []string) (Figure, error) {
	if len(categories) != len(values) {
		return Figure{}, apperrors.NewRenderFailed(name,
			fmt.Sprintf("%d categories for %d values", len(categories), len(values)), nil)
	}

	return Figure{
		Name: name,
		Data: []Trace{{
			Type:        "bar",
			Orientation: "h",
			X:           floats(values),
			Y:           strs(categories),
			Text:        text,
			Marker:      &Marker{Color: "#55A868"},
		}},
		Layout: PlotLayout{
			Title: title,
			XAxis: Axis{Title: xTitle, ShowGrid: true},
			YAxis: Axis{Title: yTitle},
		},
	}, nil
}

// ScatterFigure draws points and optional extra line series (e.g. a trend line)
func ScatterFigure(name, title, xTitle, yTitle string, points Series, lines ...Series) (Figure, error) {
	if len(points.X) != len(points.Y) {
		return Figure{}, apperrors.NewRenderFailed(name,
			fmt.Sprintf("%d x values for %d y values", len(points.X), len(points.Y)), nil)
	}

	data := []Trace{{
		Type:   "scatter",
		Name:   points.Name,
		Mode:   "markers",
		X:      floats(points.X),
		Y:      floats(points.Y),
		Text:   points.Text,
		Marker: &Marker{Size: 7, Color: "rgba(76,114,176,0.6)"},
	}}
	for _, l := range lines {
		data = append(data, Trace{
			Type: "scatter",
			Name: l.Name,
			Mode: "lines",
			X:    floats(l.X),
			Y:    floats(l.Y),
			Line: &Line{Width: 2, Color: "red", Dash: "dash"},
		})
	}

	return Figure{
		Name: name,
		Data: data,
		Layout: PlotLayout{
			Title:      title,
			ShowLegend: len(lines) > 0,
			XAxis:      Axis{Title: xTitle, ShowGrid: true},
			YAxis:      Axis{Title: yTitle, ShowGrid: true},
		},
	}, nil
}
