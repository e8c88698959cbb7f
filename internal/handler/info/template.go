package info

import (
	"embed"
	"html/template"
)

// TemplateName is the page template rendered by Show.
const TemplateName = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for gin's SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
