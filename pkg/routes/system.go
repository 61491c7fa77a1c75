// Package routes registers route groups and builds the service multiplexer.
package routes

import "net/http"

// System collects routes and groups and builds them into a handler.
type System interface {
	RegisterGroup(group Group)
	RegisterRoute(route Route)
	Build() http.Handler
	Patterns() []string
}

type routes struct {
	routes []Route
	groups []Group
}

// New creates an empty route system.
func New() System {
	return &routes{}
}

func (r *routes) RegisterRoute(route Route) {
	r.routes = append(r.routes, route)
}

func (r *routes) RegisterGroup(group Group) {
	r.groups = append(r.groups, group)
}

// Patterns lists every registered ServeMux pattern in registration order.
func (r *routes) Patterns() []string {
	var patterns []string
	for _, route := range r.routes {
		patterns = append(patterns, pattern(route.Method, route.Pattern))
	}
	for _, group := range r.groups {
		patterns = appendGroup(patterns, "", group)
	}
	return patterns
}

// Build constructs a ServeMux from every registered route and group.
func (r *routes) Build() http.Handler {
	mux := http.NewServeMux()

	for _, route := range r.routes {
		mux.HandleFunc(pattern(route.Method, route.Pattern), route.Handler)
	}
	for _, group := range r.groups {
		registerGroup(mux, "", group)
	}

	return mux
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(pattern(route.Method, prefix+route.Pattern), route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, prefix, child)
	}
}

func appendGroup(patterns []string, parentPrefix string, group Group) []string {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		patterns = append(patterns, pattern(route.Method, prefix+route.Pattern))
	}
	for _, child := range group.Children {
		patterns = appendGroup(patterns, prefix, child)
	}
	return patterns
}

func pattern(method, path string) string {
	if method == "" {
		return path
	}
	return method + " " + path
}
