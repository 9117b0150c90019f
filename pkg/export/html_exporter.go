package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var gridTemplate = template.Must(template.New("grid").Parse(`<html><head><meta charset="utf-8"><style>table{border-collapse:collapse;}td,th{border:1px solid #999;padding:6px;vertical-align:top;white-space:pre-wrap;}</style></head><body>
<h2>{{.Title}} Timetable</h2>
<table>
<tr><th>Day/Period</th>{{range .Periods}}<th>{{.}}</th>{{end}}</tr>
{{range $i, $day := .Days}}<tr><th>{{$day}}</th>{{range index $.Cells $i}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table></body></html>
`))

// HTMLExporter renders grids as standalone HTML documents.
type HTMLExporter struct{}

// NewHTMLExporter builds an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Render produces an HTML document for the grid. Cell text is escaped by
// html/template; line breaks render through the pre-wrap style.
func (e *HTMLExporter) Render(grid Grid) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := gridTemplate.Execute(buf, grid); err != nil {
		return nil, fmt.Errorf("render html grid: %w", err)
	}
	return buf.Bytes(), nil
}
