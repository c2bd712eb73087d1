package controllers

import (
	"net/http/pprof"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/roombook/backend/internal/router"
)

var _ router.Controller = (*GoDebugController)(nil)

// GoDebugController exposes pprof. Only registered with --debug.
type GoDebugController struct {
}

var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

func (c *GoDebugController) Register(router *mux.Router) {
	zap.L().Warn("enabling /debug/pprof endpoint", zap.Strings("profiles", profiles))
	sub := router.PathPrefix("/debug/pprof").Subrouter()
	for _, name := range profiles {
		sub.Handle("/"+name, pprof.Handler(name))
	}
	sub.HandleFunc("/cmdline", pprof.Cmdline)
	sub.HandleFunc("/profile", pprof.Profile)
	sub.HandleFunc("/symbol", pprof.Symbol)
	sub.HandleFunc("/trace", pprof.Trace)
	sub.HandleFunc("/", pprof.Index)
}
