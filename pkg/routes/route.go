// Package routes declares HTTP routes as data so domain handlers can publish
// their surface without touching the mux directly.
package routes

import "net/http"

// Route binds a method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Path returns the ServeMux pattern for the route under prefix.
func (r Route) Path(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
