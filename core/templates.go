package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/tdewolff/minify/v2"

	"github.com/firstapp/firstapp/web"
)

type RendererOptions struct {
	// Debug re-parses templates on every render.
	Debug  bool
	Minify bool
}

type Renderer struct {
	fsys     fs.FS
	opts     RendererOptions
	minifier *minify.M

	mu     sync.RWMutex
	parsed map[string]*template.Template
}

func NewRenderer(fsys fs.FS, opts RendererOptions) *Renderer {
	r := &Renderer{
		fsys:   fsys,
		opts:   opts,
		parsed: map[string]*template.Template{},
	}
	if opts.Minify && !opts.Debug {
		r.minifier = NewHTMLMinifier()
	}
	return r
}

// TemplatesFS picks the on-disk templates directory when one is configured
// and the embedded templates otherwise.
func TemplatesFS(config Config) fs.FS {
	if config.TemplatesDir != "" {
		return os.DirFS(config.TemplatesDir)
	}
	return web.Templates()
}

func NewRendererFromConfig(config Config) *Renderer {
	return NewRenderer(TemplatesFS(config), RendererOptions{
		Debug:  config.Debug,
		Minify: config.Minify,
	})
}

func (r *Renderer) Render(name string, data any) ([]byte, error) {
	tmpl, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}

	if r.minifier == nil {
		return buf.Bytes(), nil
	}
	return MinifyHTML(r.minifier, buf.Bytes())
}

// Names lists the top-level .html templates, sorted.
func (r *Renderer) Names() ([]string, error) {
	names, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (r *Renderer) Invalidate() {
	r.mu.Lock()
	r.parsed = map[string]*template.Template{}
	r.mu.Unlock()
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if !r.opts.Debug {
		r.mu.RLock()
		tmpl, ok := r.parsed[name]
		r.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	if _, err := fs.Stat(r.fsys, name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	tmpl, err := template.New(path.Base(name)).Funcs(TemplateFuncs()).ParseFS(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	if !r.opts.Debug {
		r.mu.Lock()
		r.parsed[name] = tmpl
		r.mu.Unlock()
	}
	return tmpl, nil
}
