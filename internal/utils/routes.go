package utils

import (
	"net/http"

	"github.com/gorilla/mux"
)

const (
	PathVarFormat = "{%s}"
)

type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// NewRouter builds a mux router serving the given routes under prefixPath.
func NewRouter(prefixPath string, routes []Route) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	for _, route := range routes {
		router.
			Methods(route.Method).
			Path(prefixPath + route.Pattern).
			Name(route.Name).
			Handler(route.HandlerFunc)
	}

	return router
}
