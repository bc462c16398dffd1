// Package dashboard renders the server-side admin pages.
package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names, one template file each.
const (
	PageHome     = "inicio"
	PageMessages = "mensajes"
	PageRecords  = "inhumados"
	PageUsers    = "usuarios"
)

var pageTitles = map[string]string{
	PageHome:     "Panel de administración",
	PageMessages: "Mensajes a la Virgen",
	PageRecords:  "Inhumados",
	PageUsers:    "Usuarios",
}

// PageData is passed to every page. Data holds the page specific payload.
type PageData struct {
	Title    string
	Active   string
	Username string
	Data     interface{}
}

// Summary is the payload of the home page.
type Summary struct {
	Pending  int
	Approved int
	Records  int
	Users    int
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"formatDate": formatDate,
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageTitles))}
	for page := range pageTitles {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page with the shared layout.
func (r *Renderer) Render(w io.Writer, page, username string, data interface{}) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown dashboard page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", PageData{
		Title:    pageTitles[page],
		Active:   page,
		Username: username,
		Data:     data,
	})
}

// Static serves the stylesheet and the dark mode script.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("02/01/2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006")
	}
	return ""
}
