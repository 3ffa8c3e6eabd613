package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Middleware wraps a handler, e.g. for authorization.
type Middleware func(HandlerFunc) HandlerFunc

type route struct {
	method  string
	pattern string
	handler HandlerFunc
}

type mount struct {
	prefix  string
	handler http.Handler
}

type Router struct {
	mux       *http.ServeMux
	exact     map[string]HandlerFunc // key = METHOD:PATH
	wildcards []route                // matched in registration order
	paths     map[string]bool        // track registered paths
	mounts    []mount                // prefix-mounted handlers (docs, metrics)
	Quiet     bool                   // disable request logging
}

func New() *Router {
	r := &Router{
		mux:   http.NewServeMux(),
		exact: make(map[string]HandlerFunc),
		paths: make(map[string]bool),
	}
	r.mux.HandleFunc("/", r.serve)
	return r
}

func (r *Router) serve(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	r.dispatch(lrw, req)

	if r.Quiet {
		return
	}
	duration := time.Since(start)
	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, duration, colorReset,
	)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	if h, ok := r.exact[req.Method+":"+req.URL.Path]; ok {
		h(w, req)
		return
	}

	pathMatched := r.paths[req.URL.Path]
	for _, rt := range r.wildcards {
		if !matchWildcardRoute(req.URL.Path, rt.pattern) {
			continue
		}
		if rt.method == req.Method {
			rt.handler(w, req)
			return
		}
		pathMatched = true
	}

	for _, m := range r.mounts {
		if strings.HasPrefix(req.URL.Path, m.prefix) {
			m.handler.ServeHTTP(w, req)
			return
		}
	}

	if pathMatched {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern.
// A trailing "*" matches any number of remaining segments, an inner "*" exactly one.
func matchWildcardRoute(requestPath, routePattern string) bool {
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	if n := len(routeSegments); n > 0 && routeSegments[n-1] == "*" {
		if len(requestSegments) < n {
			return false
		}
		return segmentsMatch(requestSegments[:n-1], routeSegments[:n-1])
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	return segmentsMatch(requestSegments, routeSegments)
}

func segmentsMatch(request, route []string) bool {
	for i, seg := range route {
		if seg == "*" {
			if request[i] == "" {
				return false
			}
			continue
		}
		if request[i] != seg {
			return false
		}
	}
	return true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc, mw ...Middleware) {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	if strings.Contains(path, "*") {
		r.wildcards = append(r.wildcards, route{method: method, pattern: path, handler: handler})
		return
	}
	r.exact[method+":"+path] = handler
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc, mw ...Middleware) {
	r.register(http.MethodGet, path, handler, mw...)
}
func (r *Router) POST(path string, handler HandlerFunc, mw ...Middleware) {
	r.register(http.MethodPost, path, handler, mw...)
}

// Mount serves every request whose path starts with prefix from h, for any method.
func (r *Router) Mount(prefix string, h http.Handler) {
	r.mounts = append(r.mounts, mount{prefix: prefix, handler: h})
}

// Handler exposes the router as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// Paths returns the registered exact paths, for tests.
func (r *Router) Paths() map[string]bool {
	return r.paths
}

// --- Start server ---
func (r *Router) Start(addr string) error {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	return http.ListenAndServe(addr, r.mux)
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut, http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
