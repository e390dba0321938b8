package kanbanstub

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// embedLoader serves pongo2 templates out of the embedded templates directory.
type embedLoader struct {
	fs fs.FS
}

func (l embedLoader) Abs(base, name string) string {
	if path.IsAbs(name) {
		return path.Clean(name[1:])
	}
	return path.Clean(name)
}

func (l embedLoader) Get(name string) (io.Reader, error) {
	return l.fs.Open(name)
}

// templateRenderer handles template rendering with pongo2.
type templateRenderer struct {
	templateSet *pongo2.TemplateSet
}

func newTemplateRenderer() (*templateRenderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template directory not found: %w", err)
	}
	set := pongo2.NewSet("kanbanstub", embedLoader{fs: sub})
	// Fail at startup rather than on first request.
	for _, name := range []string{"login.html", "board.html"} {
		if _, err := set.FromCache(name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
	}
	return &templateRenderer{templateSet: set}, nil
}

// HTML renders a template.
func (r *templateRenderer) HTML(c *gin.Context, code int, name string, data gin.H) {
	tmpl, err := r.templateSet.FromCache(name)
	if err != nil {
		c.String(http.StatusInternalServerError, "Template not found: %s", name)
		return
	}
	out, err := tmpl.ExecuteBytes(pongo2.Context(data))
	if err != nil {
		c.String(http.StatusInternalServerError, "Template execution error: %v", err)
		return
	}
	c.Data(code, "text/html; charset=utf-8", out)
}
