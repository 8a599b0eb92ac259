package web

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html templates/partials/*.html
var files embed.FS

// Renderer plugs the embedded page templates into echo. Templates are
// addressed by file name ("cart.html", "partials/cart_snippet.html").
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(files, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	// ParseFS registers templates under their base name.
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return r.templates.ExecuteTemplate(w, name, data)
}

// RenderToString renders a fragment for JSON-wrapped snippet responses.
func (r *Renderer) RenderToString(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, name, data, nil); err != nil {
		return "", err
	}
	return b.String(), nil
}
