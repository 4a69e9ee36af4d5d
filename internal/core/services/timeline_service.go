package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

const defaultPageSize = 20

type timelineService struct {
	posts ports.PostRepository
	cache ports.ViewCache
}

func NewTimelineService(posts ports.PostRepository, cache ports.ViewCache) ports.TimelineService {
	return &timelineService{posts: posts, cache: cache}
}

// HomeTimeline : pagination keyset (le token est la date de création du
// dernier post, RFC3339Nano). Seule la première page passe par le cache Redis,
// c'est elle que les mutations invalident.
func (s *timelineService) HomeTimeline(ctx context.Context, limit int, pageToken string) ([]*domain.Post, string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > 100 {
		limit = 100
	}

	var cursorTime time.Time
	if pageToken != "" {
		var err error
		cursorTime, err = time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", errors.New("invalid page token")
		}
	}

	firstPage := pageToken == "" && limit == defaultPageSize
	if firstPage {
		if posts, ok, err := s.cache.GetHomePage(ctx); err == nil && ok {
			return posts, nextToken(posts), nil
		} else if err != nil {
			slog.Warn("⚠️ Home cache read failed", "error", err)
		}
	}

	posts, err := s.posts.ListHome(ctx, limit, cursorTime)
	if err != nil {
		return nil, "", err
	}

	if firstPage {
		if err := s.cache.SetHomePage(ctx, posts); err != nil {
			slog.Warn("⚠️ Home cache write failed", "error", err)
		}
	}

	return posts, nextToken(posts), nil
}

// GetPost : vue détail, cachée elle aussi (c'est cette entrée que le toggle
// like/save et l'ajout de commentaire invalident).
func (s *timelineService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	if post, ok, err := s.cache.GetPostView(ctx, postID); err == nil && ok {
		return post, nil
	} else if err != nil {
		slog.Warn("⚠️ Post cache read failed", "post_id", postID, "error", err)
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPostView(ctx, post); err != nil {
		slog.Warn("⚠️ Post cache write failed", "post_id", postID, "error", err)
	}
	return post, nil
}

func nextToken(posts []*domain.Post) string {
	if len(posts) == 0 {
		return ""
	}
	return posts[len(posts)-1].CreatedAt.Format(time.RFC3339Nano)
}
