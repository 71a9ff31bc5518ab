// Package views holds the embedded page templates and the html engine
// that renders them.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/bilgisen/pressdesk/internal/richtext"
)

// Layout wraps every page
const Layout = "layouts/main"

//go:embed templates
var files embed.FS

// New returns the template engine over the embedded templates
func New() *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(Funcs())
	return engine
}

// Funcs are the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"excerpt": func(s string) string { return richtext.Excerpt(s, 140) },
		"richtext": func(s string) template.HTML {
			return template.HTML(richtext.Sanitize(s))
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
	}
}
