package routes

import "net/http"

// Group collects routes under a shared prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups, including nested children, to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		register(mux, "", g)
	}
}

func register(mux *http.ServeMux, parent string, g Group) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Path(prefix), r.Handler)
	}
	for _, child := range g.Children {
		register(mux, prefix, child)
	}
}
