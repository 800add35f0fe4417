package providers

import (
	"net/http"
	"sort"
	"strings"

	"guildstore/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

// RouterProvider collects handlers per URL and method. One URL may carry both
// a GET and a POST handler; GetRoutes folds them into a single route.
type RouterProvider struct {
	order    []string
	handlers map[string]map[string]http.Handler
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	methods, ok := rp.handlers[url]
	if !ok {
		methods = make(map[string]http.Handler)
		rp.handlers[url] = methods
		rp.order = append(rp.order, url)
	}
	methods[method] = handler
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	routes := make([]structures.Route, 0, len(rp.order))
	for _, url := range rp.order {
		routes = append(routes, structures.Route{
			Url:     url,
			Handler: methodHandler(rp.handlers[url]),
		})
	}
	return routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{handlers: make(map[string]map[string]http.Handler)}
}

func methodHandler(methods map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(methods))
	for m := range methods {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := methods[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
