package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ummahhub/community-api/internal/api/http/handlers"
	"github.com/ummahhub/community-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Forum          *handlers.ForumHandler
	AdminForum     *handlers.AdminForumHandler
	Suggestions    *handlers.SuggestionsHandler
	Preferences    *handlers.PreferencesHandler
	Stream         *handlers.StreamHandler
	AuthMiddleware *auth.AuthMiddleware
	Gatherer       prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/admin/login", cfg.Auth.Login)

	forumGroup := app.Group("/forum", cfg.AuthMiddleware.Optional)
	forumGroup.Get("/threads", cfg.Forum.ListThreads)
	forumGroup.Post("/threads", cfg.Forum.CreateThread)
	forumGroup.Get("/threads/:id", cfg.Forum.GetThread)
	forumGroup.Post("/threads/:id/replies", cfg.Forum.PostReply)
	forumGroup.Get("/search", cfg.Forum.Search)
	if cfg.Stream != nil {
		forumGroup.Get("/stream", cfg.Stream.Stream)
	}

	reader := app.Group("/reader")
	reader.Get("/preferences/:clientId", cfg.Preferences.Get)
	reader.Put("/preferences/:clientId", cfg.Preferences.Put)
	reader.Delete("/preferences/:clientId", cfg.Preferences.Reset)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminForum := admin.Group("/forum/threads")
	adminForum.Post("/:id/replies", cfg.AdminForum.PostReply)
	adminForum.Put("/:id/replies/:replyId", cfg.AdminForum.EditReply)
	adminForum.Delete("/:id/replies/:replyId", cfg.AdminForum.DeleteReply)
	adminForum.Post("/:id/close", cfg.AdminForum.Close)
	adminForum.Post("/:id/reopen", cfg.AdminForum.Reopen)
	adminForum.Post("/:id/suggestion", cfg.AdminForum.Prefill)
	adminForum.Patch("/:id", cfg.AdminForum.EditQuestion)
	adminForum.Delete("/:id", cfg.AdminForum.DeleteThread)

	suggestions := admin.Group("/suggestions")
	suggestions.Post("/answer", cfg.Suggestions.Answer)
	suggestions.Post("/event-description", cfg.Suggestions.EventDescription)
	suggestions.Post("/team-bio", cfg.Suggestions.TeamBio)
	suggestions.Post("/testimonial", cfg.Suggestions.Testimonial)
}
