// Package report regenerates the automatic section of the project README
// from classification results.
package report

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"catnet/internal/inference"
)

// Markers delimiting the generated section. Text outside them is kept.
const (
	BeginMarker = "<!-- BEGIN AUTO -->\n"
	EndMarker   = "<!-- END AUTO -->\n"
)

// ErrMarkers is returned when a document lacks the section markers.
var ErrMarkers = errors.New("report: section markers not found")

const perRow = 5

var section = template.Must(template.New("section").Funcs(template.FuncMap{
	"rowStart": func(i int) bool { return i%perRow == 0 },
	"slash":    filepath.ToSlash,
}).Parse(`Training Images
---------------
<table>
{{range $i, $r := .Train}}{{if rowStart $i}}<tr>
{{end}}  <td>

 ![Training Image {{$i}}]({{slash $r.Path}})
{{end}}</table>


Test Results
------------
<table>
{{range $i, $r := .Test}}{{if rowStart $i}}<tr>
{{end}}  <td>

  ![Test Image {{$i}}]({{slash $r.Path}})<br>
  <span>{{$r.Label}} {{if $r.Correct}}(pass){{else}}(fail){{end}}</span>
{{end}}</table>


Test Accuracy
-------------
Out of {{len .Test}} test samples, {{.Correct}} were correctly classified.

The test accuracy is: {{printf "%.2f" .Percent}}%.
`))

type sectionData struct {
	Train   []inference.Result
	Test    []inference.Result
	Correct int
	Percent float64
}

// Render writes the generated section for the given results.
func Render(w io.Writer, train, test []inference.Result) error {
	data := sectionData{Train: train, Test: test, Percent: 100 * inference.Accuracy(test)}
	for _, r := range test {
		if r.Correct() {
			data.Correct++
		}
	}
	return errors.Wrap(section.Execute(w, data), "render report")
}

// Splice replaces the text between the markers of doc with body.
func Splice(doc, body string) (string, error) {
	begin := strings.Index(doc, BeginMarker)
	if begin < 0 {
		return "", errors.Wrap(ErrMarkers, "missing begin marker")
	}
	head := begin + len(BeginMarker)
	end := strings.Index(doc[head:], EndMarker)
	if end < 0 {
		return "", errors.Wrap(ErrMarkers, "missing end marker")
	}
	return doc[:head] + body + doc[head+end:], nil
}

// Update rewrites the generated section of the document at path.
func Update(path string, train, test []inference.Result) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read report")
	}
	var body bytes.Buffer
	if err := Render(&body, train, test); err != nil {
		return err
	}
	out, err := Splice(string(raw), body.String())
	if err != nil {
		return errors.Wrap(err, path)
	}
	return errors.Wrap(os.WriteFile(path, []byte(out), 0o644), "write report")
}
