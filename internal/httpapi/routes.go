package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mesa-rpg/battlemap-backend/internal/hub"
	"github.com/mesa-rpg/battlemap-backend/internal/upload"
	"github.com/mesa-rpg/battlemap-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, relay *upload.Relay, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(allowAll)

	// Public routes
	r.Post("/rooms", CreateRoom(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	r.Post("/upload", relay.Handle)
	r.Handle("/uploads/*", relay.Serve())
	return r
}

// allowAll opens every route to the browser client, which is served from a
// different origin.
func allowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
