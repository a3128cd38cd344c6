package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes wires HTTP handlers into the provided router.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	health := HealthHandler{}
	authh := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions, Limiter: deps.Limiter}
	profiles := ProfileHandler{Profiles: deps.Profiles, Cache: deps.ProfileCache, Accounts: deps.Accounts}
	videos := VideoHandler{Videos: deps.Videos, Notifier: deps.Notifier}
	social := SocialHandler{Graph: deps.Graph, Notifier: deps.Notifier}
	notifications := NotificationHandler{Notifications: deps.Notifications}
	phones := PhoneHandler{Verifier: deps.Phone, Profiles: deps.Profiles, Limiter: deps.Limiter}
	uploads := UploadHandler{Blobs: deps.Blobs, MaxBytes: deps.MaxUploadBytes}

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/signup", authh.SignUp)
		api.Post("/auth/login", authh.Login)
		api.Post("/auth/refresh", authh.Refresh)
		api.Post("/auth/logout", authh.Logout)

		api.Get("/profile", profiles.Me)
		api.Put("/profile", profiles.Save)
		api.Get("/profiles/search", profiles.Search)
		api.Get("/profiles/{principal}", profiles.Get)
		api.Get("/profiles/{principal}/followers", social.Followers)
		api.Get("/profiles/{principal}/following", social.Following)
		api.Get("/role", profiles.Role)
		api.Post("/admin/roles", profiles.AssignRole)

		api.Post("/videos", videos.Create)
		api.Get("/videos", videos.Feed)
		api.Get("/videos/{id}", videos.Get)
		api.Post("/videos/{id}/like", videos.Like)
		api.Post("/videos/{id}/comments", videos.Comment)

		api.Post("/follows/{principal}", social.Follow)
		api.Delete("/follows/{principal}", social.Unfollow)

		api.Get("/notifications", notifications.List)
		api.Patch("/notifications/{id}", notifications.UpdateStatus)

		api.Post("/phone/start", phones.Start)
		api.Post("/phone/confirm", phones.Confirm)

		api.Post("/uploads", uploads.Upload)
	})
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts       AccountStore
	Sessions       SessionManager
	Profiles       ProfileStore
	ProfileCache   ProfileCache
	Videos         VideoStore
	Graph          GraphStore
	Notifications  NotificationStore
	Notifier       Notifier
	Phone          PhoneVerifier
	Blobs          BlobStore
	Limiter        RateLimiter
	MaxUploadBytes int64
}
