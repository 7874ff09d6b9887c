package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"pet-lost-found/internal/platform/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticHandler sirve los assets embebidos (css). Las fotos subidas van por
// otro handler porque viven en disco.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Renderer compila las plantillas embebidas una sola vez y las ejecuta sobre
// un buffer para no mandar páginas a medio escribir.
type Renderer struct {
	tpl *template.Template
	log logger.Logger
}

func NewRenderer(log logger.Logger) (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tpl: tpl, log: log}, nil
}

func (rd *Renderer) Render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := rd.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		rd.log.Error("rendering template", map[string]any{
			"template": name,
			"error":    err.Error(),
		})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
