package render

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	ginrender "github.com/gin-gonic/gin/render"
)

var (
	// ErrTemplateNotFound is returned for an unknown template name
	ErrTemplateNotFound = errors.New("template not found")
	// ErrBinding is returned when a template references a binding that was not supplied
	ErrBinding = errors.New("template binding missing")
)

// Renderer renders *.html with html/template and *.txt with text/template.
// Templates are addressed by file name, e.g. "contact_mail.txt".
type Renderer struct {
	fsys fs.FS

	mu   sync.RWMutex
	html *htmltemplate.Template
	text *texttemplate.Template
}

// New parses every template found at the root of fsys
func New(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{fsys: fsys}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load (re)parses all templates. The previous set stays active on error.
func (r *Renderer) Load() error {
	html := htmltemplate.New("").Option("missingkey=error")
	text := texttemplate.New("").Option("missingkey=error")

	htmlFiles, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("failed to list html templates: %w", err)
	}
	if len(htmlFiles) > 0 {
		if html, err = html.ParseFS(r.fsys, htmlFiles...); err != nil {
			return fmt.Errorf("failed to parse html templates: %w", err)
		}
	}

	textFiles, err := fs.Glob(r.fsys, "*.txt")
	if err != nil {
		return fmt.Errorf("failed to list text templates: %w", err)
	}
	if len(textFiles) > 0 {
		if text, err = text.ParseFS(r.fsys, textFiles...); err != nil {
			return fmt.Errorf("failed to parse text templates: %w", err)
		}
	}

	r.mu.Lock()
	r.html = html
	r.text = text
	r.mu.Unlock()

	return nil
}

// Render executes the named template with bindings
func (r *Renderer) Render(name string, bindings map[string]any) (string, error) {
	var buf bytes.Buffer
	var err error

	r.mu.RLock()
	html, text := r.html, r.text
	r.mu.RUnlock()

	if path.Ext(name) == ".txt" {
		t := text.Lookup(name)
		if t == nil {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		err = t.Execute(&buf, bindings)
	} else {
		t := html.Lookup(name)
		if t == nil {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		err = t.Execute(&buf, bindings)
	}

	if err != nil {
		return "", classifyExecError(name, err)
	}
	return buf.String(), nil
}

// Instance implements gin's render.HTMLRender
func (r *Renderer) Instance(name string, data any) ginrender.Render {
	r.mu.RLock()
	html := r.html
	r.mu.RUnlock()

	return ginrender.HTML{
		Template: html,
		Name:     name,
		Data:     data,
	}
}

func classifyExecError(name string, err error) error {
	if strings.Contains(err.Error(), "map has no entry for key") {
		return fmt.Errorf("%w: %s: %v", ErrBinding, name, err)
	}
	return fmt.Errorf("failed to execute template %s: %w", name, err)
}
