package router

import (
	"github.com/gorilla/mux"
)

type Controller interface {
	Register(router *mux.Router)
}

// RegisterAll registers every controller on router, in order.
func RegisterAll(router *mux.Router, controllers ...Controller) {
	for _, c := range controllers {
		c.Register(router)
	}
}
