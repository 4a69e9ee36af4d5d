package httpapi

import (
	"net/http"

	"github.com/jupiterclapton/skylark/internal/core/ports"
)

// Server est l'adapter primaire HTTP : il mappe les appels du front
// (formulaires multipart et JSON) sur les ports du core.
type Server struct {
	interactions ports.InteractionService
	compose      ports.ComposeService
	profile      ports.ProfileService
	timeline     ports.TimelineService
}

func NewServer(
	interactions ports.InteractionService,
	compose ports.ComposeService,
	profile ports.ProfileService,
	timeline ports.TimelineService,
) *Server {
	return &Server{
		interactions: interactions,
		compose:      compose,
		profile:      profile,
		timeline:     timeline,
	}
}

// Routes monte tous les endpoints sur un mux. Les middlewares (auth, CORS,
// OTEL) sont empilés par main.go autour du handler retourné.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Toggles
	mux.HandleFunc("POST /v1/actors/{id}/follow", s.handleToggleFollow)
	mux.HandleFunc("POST /v1/posts/{id}/like", s.handleToggleLike)
	mux.HandleFunc("POST /v1/posts/{id}/save", s.handleToggleSave)
	mux.HandleFunc("POST /v1/posts/{id}/repost", s.handleToggleRepost)

	// Compose
	mux.HandleFunc("POST /v1/posts", s.handleCreatePost)
	mux.HandleFunc("POST /v1/posts/{id}/comments", s.handleCreateComment)

	// Profil
	mux.HandleFunc("POST /v1/profile", s.handleUpdateProfile)
	mux.HandleFunc("GET /v1/users/{username}", s.handleGetPublicProfile)

	// Lectures
	mux.HandleFunc("GET /v1/timeline", s.handleHomeTimeline)
	mux.HandleFunc("GET /v1/posts/{id}", s.handleGetPost)
	mux.HandleFunc("GET /v1/actors/{id}/relation", s.handleFollowStatus)
	mux.HandleFunc("GET /v1/recommendations", s.handleRecommendations)

	// Présence
	mux.HandleFunc("POST /v1/session/connect", s.handleSessionConnect)

	return mux
}
