package renderer

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/damacus/bucket-drop/views"
	"github.com/labstack/echo/v4"
)

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a TemplateRenderer over the embedded views
func New() *TemplateRenderer {
	return NewFromFS(views.FS)
}

// NewFromFS parses every template from fsys. It panics on a parse error,
// which can only happen with a broken build.
func NewFromFS(fsys fs.FS) *TemplateRenderer {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template),
	}
	r.parseTemplates(fsys)
	return r
}

func (t *TemplateRenderer) parseTemplates(fsys fs.FS) {
	// Pages get the layout plus every partial they may inline
	t.Templates["upload"] = template.Must(template.ParseFS(fsys,
		"layouts/base.html",
		"partials/upload_controls.html",
		"partials/upload_result.html",
		"pages/upload.html",
	))

	// Partials
	t.Templates["upload_controls"] = template.Must(template.ParseFS(fsys, "partials/upload_controls.html"))
	t.Templates["upload_result"] = template.Must(template.ParseFS(fsys, "partials/upload_result.html"))
}

// selfExecutingTemplates lists templates that execute their own named block instead of "base"
var selfExecutingTemplates = map[string]bool{
	"upload_controls": true,
	"upload_result":   true,
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}

	if selfExecutingTemplates[name] {
		return tmpl.ExecuteTemplate(w, name, data)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
