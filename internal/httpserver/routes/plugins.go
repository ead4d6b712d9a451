package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
	"github.com/plugmarket/plugmarket/internal/httpserver/handlers"
)

func init() { Register(registerPlugins) }

func registerPlugins(r chi.Router, d deps.Deps) {
	r.Get("/plugins", handlers.Plugins(d))
}
