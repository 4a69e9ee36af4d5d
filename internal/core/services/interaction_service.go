package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

// interactionService implémente les quatre toggles (follow/like/save/repost).
//
// Mécanique anti-course : on tente l'INSERT d'abord. Si la contrainte UNIQUE
// refuse (ErrDuplicateEdge), c'est que l'edge existe -> on le supprime.
// Deux requêtes concurrentes identiques ne peuvent donc jamais laisser deux
// edges : au pire l'une insère et l'autre supprime (paire toggle légitime),
// ou les deux suppressions se croisent et la seconde tombe sur ErrEdgeNotFound,
// qu'on tolère.
type interactionService struct {
	edges     ports.EdgeRepository
	posts     ports.PostRepository
	graph     ports.FollowGraph
	cache     ports.ViewCache
	publisher ports.EventPublisher
}

func NewInteractionService(
	edges ports.EdgeRepository,
	posts ports.PostRepository,
	graph ports.FollowGraph,
	cache ports.ViewCache,
	publisher ports.EventPublisher,
) ports.InteractionService {
	return &interactionService{
		edges:     edges,
		posts:     posts,
		graph:     graph,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *interactionService) ToggleFollow(ctx context.Context, actorID, targetActorID string) error {
	if actorID == "" {
		return nil // Pas de session : no-op silencieux, pas une erreur
	}
	if targetActorID == "" {
		return domain.ErrInvalidReference
	}
	if actorID == targetActorID {
		return domain.ErrSelfFollow
	}

	created, err := s.toggleEdge(ctx, actorID, targetActorID, domain.EdgeFollow)
	if err != nil {
		return err
	}

	// Projection graphe + event : best-effort, jamais bloquant.
	s.mirrorFollow(ctx, actorID, targetActorID, created)
	return nil
}

func (s *interactionService) ToggleLike(ctx context.Context, actorID, postID string) error {
	return s.togglePostEdge(ctx, actorID, postID, domain.EdgeLike)
}

func (s *interactionService) ToggleSave(ctx context.Context, actorID, postID string) error {
	return s.togglePostEdge(ctx, actorID, postID, domain.EdgeSave)
}

// ToggleRepost : même sémantique de toggle, mais la "présence" est une ligne
// Post référençant la source, pas un edge (le repost apparaît dans les feeds).
func (s *interactionService) ToggleRepost(ctx context.Context, actorID, sourcePostID string) error {
	if actorID == "" {
		return nil
	}
	if sourcePostID == "" {
		return domain.ErrInvalidReference
	}

	repost := domain.NewRepost(actorID, sourcePostID)
	err := s.posts.Save(ctx, repost)
	switch {
	case err == nil:
		// Créé
	case errors.Is(err, domain.ErrDuplicateRepost):
		// Déjà reposté -> on retire. Le not-found concurrent est bénin.
		if err := s.posts.DeleteRepost(ctx, actorID, sourcePostID); err != nil &&
			!errors.Is(err, domain.ErrPostNotFound) {
			return err
		}
	default:
		return err
	}

	s.invalidateViews(ctx, sourcePostID)
	return nil
}

func (s *interactionService) FollowStatus(ctx context.Context, actorID, targetActorID string) (*domain.RelationStatus, error) {
	if actorID == "" {
		return &domain.RelationStatus{}, nil
	}
	return s.edges.FollowStatus(ctx, actorID, targetActorID)
}

func (s *interactionService) Recommendations(ctx context.Context, actorID string, limit int) ([]string, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return s.graph.Recommend(ctx, actorID, limit)
}

// --- HELPERS ---

// toggleEdge renvoie true si l'edge a été créé, false s'il a été supprimé.
func (s *interactionService) toggleEdge(ctx context.Context, actorID, targetID string, kind domain.EdgeKind) (bool, error) {
	edge := domain.NewEdge(actorID, targetID, kind)

	err := s.edges.Insert(ctx, edge)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrDuplicateEdge) {
		return false, err
	}

	// L'edge existait : sens inverse du toggle.
	if err := s.edges.DeleteByKey(ctx, actorID, targetID, kind); err != nil &&
		!errors.Is(err, domain.ErrEdgeNotFound) {
		return false, err
	}
	return false, nil
}

func (s *interactionService) togglePostEdge(ctx context.Context, actorID, postID string, kind domain.EdgeKind) error {
	if actorID == "" {
		return nil
	}
	if postID == "" {
		return domain.ErrInvalidReference
	}
	if _, err := s.toggleEdge(ctx, actorID, postID, kind); err != nil {
		return err
	}
	s.invalidateViews(ctx, postID)
	return nil
}

func (s *interactionService) mirrorFollow(ctx context.Context, actorID, targetID string, following bool) {
	var err error
	if following {
		err = s.graph.Link(ctx, actorID, targetID)
	} else {
		err = s.graph.Unlink(ctx, actorID, targetID)
	}
	if err != nil {
		slog.Warn("⚠️ Follow graph projection failed", "actor_id", actorID, "target_id", targetID, "error", err)
	}

	if err := s.publisher.PublishFollowChanged(ctx, actorID, targetID, following); err != nil {
		slog.Warn("⚠️ Publish follow event failed", "actor_id", actorID, "error", err)
	}

	if err := s.cache.InvalidateHome(ctx); err != nil {
		slog.Warn("⚠️ Cache invalidation failed", "view", "home", "error", err)
	}
}

func (s *interactionService) invalidateViews(ctx context.Context, postID string) {
	if err := s.cache.InvalidateHome(ctx); err != nil {
		slog.Warn("⚠️ Cache invalidation failed", "view", "home", "error", err)
	}
	if err := s.cache.InvalidatePost(ctx, postID); err != nil {
		slog.Warn("⚠️ Cache invalidation failed", "view", "post", "post_id", postID, "error", err)
	}
}
