package core

import (
	"net/http"

	"github.com/rs/zerolog"
)

const indexCacheKey = "/"

type RuntimeContext struct {
	Debug    bool
	OnReload func()
	Logger   *zerolog.Logger
}

// Router owns the application's single route, GET /, which renders the
// configured index template with no data.
type Router struct {
	config   Config
	ctx      RuntimeContext
	logger   zerolog.Logger
	renderer *Renderer
	cache    *PageCache
	watcher  *TemplateWatcher
	mux      *http.ServeMux
}

var NewRouter = func(config Config, ctx RuntimeContext) http.Handler {
	config.Debug = config.Debug || ctx.Debug

	logger := zerolog.Nop()
	if ctx.Logger != nil {
		logger = *ctx.Logger
	}

	r := &Router{
		config:   config,
		ctx:      ctx,
		logger:   logger,
		renderer: NewRendererFromConfig(config),
		cache:    NewPageCache(),
		mux:      http.NewServeMux(),
	}

	r.mux.HandleFunc("GET /{$}", r.serveIndex)

	if config.Debug && config.TemplatesDir != "" {
		w, err := WatchTemplates(config.TemplatesDir, logger, r.reload)
		if err != nil {
			logger.Warn().Err(err).Str("dir", config.TemplatesDir).Msg("template watching disabled")
		} else {
			r.watcher = w
		}
	}

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close stops the template watcher, if one is running. It is safe to call
// more than once.
func (r *Router) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}

func (r *Router) reload() {
	r.renderer.Invalidate()
	r.cache.Invalidate()
	if r.ctx.OnReload != nil {
		r.ctx.OnReload()
	}
}

func (r *Router) serveIndex(w http.ResponseWriter, req *http.Request) {
	page, err := r.indexPage()
	if err != nil {
		r.renderError(w, err)
		return
	}

	if r.config.DebugHeaders {
		w.Header().Set("X-Firstapp-Template", r.config.IndexTemplate)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if page.ETag != "" {
		w.Header().Set("ETag", page.ETag)
		if etagMatches(req.Header.Get("If-None-Match"), page.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	if page.Gzip != nil {
		w.Header().Set("Vary", "Accept-Encoding")
		if acceptsGzip(req) {
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(page.Gzip)
			return
		}
	}

	w.Write(page.Body)
}

func (r *Router) indexPage() (*Page, error) {
	useCache := r.config.CacheEnabled && !r.config.Debug

	if useCache {
		if page, ok := r.cache.Get(indexCacheKey); ok {
			return page, nil
		}
	}

	body, err := r.renderer.Render(r.config.IndexTemplate, nil)
	if err != nil {
		return nil, err
	}

	if r.config.Debug {
		return &Page{Body: InjectReloadScript(body)}, nil
	}
	if useCache {
		return r.cache.Store(indexCacheKey, body)
	}
	return &Page{Body: body}, nil
}

func (r *Router) renderError(w http.ResponseWriter, err error) {
	r.logger.Error().Err(err).Str("template", r.config.IndexTemplate).Msg("render failed")

	if r.config.Debug {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
