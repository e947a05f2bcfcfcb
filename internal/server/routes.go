package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoQuest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(deps.Logger, deps.Store, deps.Cache))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", handleRegister(deps.Logger, deps.Store, deps.Mailer))
		r.Post("/login", handleLogin(broker, deps.Store))
		r.Get("/leaderboard", handleLeaderboard(deps.Logger, deps.Store, deps.Cache))

		// Organizer tooling.
		r.Get("/zones/{zoneID}/qr", handleZoneQR(deps.Store, deps.ExtractionKey))

		// Team session — {teamID} resolved by teamMiddleware.
		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Use(teamMiddleware(deps.Store))
			r.Get("/zone", handleCurrentZone(deps.Store))
			r.Post("/zone/code", handleCodeSubmit(deps.Logger, broker, deps.Store, deps.GeoTolerance, deps.GeoDefaultRadius))
			r.Post("/zone/answer", handleAnswer(deps.Logger, broker, deps.Store))
			r.Post("/zone/photo", handlePhoto(deps.Logger, broker, deps.Store, deps.Verifier))
			r.Post("/zone/skip", handleSkip(deps.Logger, broker, deps.Store))
			r.Post("/quit", handleQuit(deps.Logger, broker, deps.Store))
			r.Post("/extract", handleExtract(deps.Logger, broker, deps.Store, deps.Cache, deps.ExtractionKey))
			r.Get("/archive", handleArchive(deps.Store))
			r.Get("/events", handleEvents(broker))
		})
	})
}
