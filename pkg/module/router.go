package module

import (
	"net/http"
	"strings"
)

// Router dispatches to mounted modules by first path segment and falls back to
// a native ServeMux for everything else (health, metrics).
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers fn on the fallback mux.
func (r *Router) HandleNative(pattern string, fn http.HandlerFunc) {
	r.native.HandleFunc(pattern, fn)
}

// Handle registers h on the fallback mux.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.native.Handle(pattern, h)
}

// Mount registers m under its prefix, replacing any module with the same prefix.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
		req.URL.Path = path
	}

	if m, ok := r.modules[firstSegment(path)]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[1]
	}
	return path
}
