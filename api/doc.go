// Package api provides the HTTP API layer for the AI/ML digests service.
// It uses the Huma framework on a chi router for OpenAPI documentation,
// request validation and a typed handler interface.
//
// # Layout
//
// - server.go: router, middleware and Huma setup
// - handlers/: feeds, articles, favorites, triggers and status
// - dto/: request and response shapes plus mappers from domain types
// - middleware/: request logging and per-IP rate limiting
//
// # Routes
//
// The documented API is mounted under /api, with its OpenAPI document at
// /api/openapi.json and interactive docs at /api/docs. /health and /metrics
// sit at the root so probes and scrapers bypass the rate limiter.
//
// Pipeline stages run in the background: trigger endpoints answer 202
// immediately and 409 when the same task is already running.
//
// # Usage
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:     logger,
//	    RateLimit:  100,
//	    RateWindow: time.Minute,
//	    Flags:      flags,
//	    Gatherer:   registry,
//	})
//	api.Register(humaAPI,
//	    handlers.NewFeedHandler(store, scheduler, deps),
//	    handlers.NewArticleHandler(store, deps),
//	)
//	http.ListenAndServe(":8000", router)
//
// # Errors
//
// Errors use the RFC 7807 problem format produced by Huma:
//
//	{
//	    "status": 404,
//	    "title": "Not Found",
//	    "detail": "feed not found: 7"
//	}
//
// Domain validation failures map to 400; malformed requests rejected by
// schema validation map to 422.
package api
