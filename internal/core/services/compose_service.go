package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

type composeService struct {
	posts     ports.PostRepository
	media     ports.MediaStore
	cache     ports.ViewCache
	publisher ports.EventPublisher
}

func NewComposeService(
	posts ports.PostRepository,
	media ports.MediaStore,
	cache ports.ViewCache,
	publisher ports.EventPublisher,
) ports.ComposeService {
	return &composeService{posts: posts, media: media, cache: cache, publisher: publisher}
}

// CreatePost : validation -> upload (si fichier) -> persistance -> event + invalidation.
// L'ordre est contractuel : l'upload DOIT réussir avant toute persistance
// (pas de post texte orphelin quand le média demandé a échoué), et la
// validation DOIT refuser avant tout appel d'upload.
func (s *composeService) CreatePost(ctx context.Context, cmd ports.ComposeCmd) (*domain.Post, error) {
	if cmd.ActorID == "" {
		return nil, domain.ErrUnauthenticated
	}

	post, err := domain.NewPost(cmd.ActorID, cmd.Body, cmd.Sensitive)
	if err != nil {
		return nil, err
	}

	if cmd.File != nil && len(cmd.File.Data) > 0 {
		result, err := s.media.Upload(ctx, ports.UploadInput{
			FileName:       cmd.File.Name,
			Folder:         "/posts",
			ContentType:    cmd.File.ContentType,
			Transformation: transformationFor(cmd.Aspect, cmd.File.ContentType),
			Data:           cmd.File.Data,
		})
		if err != nil {
			// Abandon total : rien ne sera persisté.
			return nil, fmt.Errorf("media upload: %w", err)
		}
		post.AttachMedia(result.Type, result.Path, result.Height)
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}

	s.afterWrite(ctx, post)
	return post, nil
}

// CreateComment : pas de média sur les commentaires, mais un parent obligatoire.
func (s *composeService) CreateComment(ctx context.Context, cmd ports.CommentCmd) (*domain.Post, error) {
	if cmd.ActorID == "" {
		return nil, domain.ErrUnauthenticated
	}

	comment, err := domain.NewComment(cmd.ActorID, cmd.ParentPostID, cmd.Body)
	if err != nil {
		return nil, err
	}

	// Le parent doit exister (la FK le garantirait aussi, mais on veut une
	// erreur exploitable plutôt qu'une violation de contrainte).
	if _, err := s.posts.FindByID(ctx, cmd.ParentPostID); err != nil {
		return nil, fmt.Errorf("parent post: %w", err)
	}

	if err := s.posts.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}

	s.afterWrite(ctx, comment)
	return comment, nil
}

// --- HELPERS ---

// transformationFor dérive le hint de pré-transformation façon media service :
// largeur fixe 600, plus un ratio selon le cadrage demandé. Les vidéos ne
// sont jamais transformées.
func transformationFor(aspect ports.AspectMode, contentType string) string {
	if !strings.HasPrefix(contentType, "image/") {
		return ""
	}
	switch aspect {
	case ports.AspectSquare:
		return "w-600,ar-1-1"
	case ports.AspectWide:
		return "w-600,ar-16-9"
	default:
		return "w-600"
	}
}

func (s *composeService) afterWrite(ctx context.Context, post *domain.Post) {
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.Warn("⚠️ Publish post.created failed", "post_id", post.ID, "error", err)
	}
	if err := s.cache.InvalidateHome(ctx); err != nil {
		slog.Warn("⚠️ Cache invalidation failed", "view", "home", "error", err)
	}
	if post.IsComment() {
		if err := s.cache.InvalidatePost(ctx, post.ParentID); err != nil {
			slog.Warn("⚠️ Cache invalidation failed", "view", "post", "post_id", post.ParentID, "error", err)
		}
	}
}
