package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Renderer manages the portal's page templates.
//
// The portal has two pages (login, docs) so every template under the
// templates dir is parsed as a standalone set. In dev mode templates are
// re-parsed on every render for hot-reload.
type Renderer struct {
	templates    map[string]*template.Template
	templatesDir string
	isDev        bool
	mu           sync.RWMutex
}

// NewRenderer creates a renderer over templatesDir.
func NewRenderer(templatesDir string, isDev bool) (*Renderer, error) {
	r := &Renderer{
		templates:    make(map[string]*template.Template),
		templatesDir: templatesDir,
		isDev:        isDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

// TemplateFuncs returns the FuncMap available to all page templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}

func (r *Renderer) loadTemplates() error {
	pattern := filepath.Join(r.templatesDir, "*.html")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found in %s", r.templatesDir)
	}

	templates := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		tmpl, err := template.New(filepath.Base(file)).Funcs(TemplateFuncs()).ParseFiles(file)
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		templates[name] = tmpl
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()
	return nil
}

// Render writes the named page to w. Rendering goes through a buffer so a
// template error never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	if r.isDev {
		if err := r.loadTemplates(); err != nil {
			return err
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
