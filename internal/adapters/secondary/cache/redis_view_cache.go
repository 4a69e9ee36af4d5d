package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const (
	homeViewKey = "view:home"
	homeViewTTL = 60 * time.Second // Vue chaude, invalidée de toute façon à chaque mutation
)

// RedisViewCache matérialise les vues de lecture dans Redis. L'invalidation
// est un simple DEL : le prochain lecteur reconstruira depuis Postgres.
type RedisViewCache struct {
	client *redis.Client
}

func NewRedisViewCache(client *redis.Client) ports.ViewCache {
	return &RedisViewCache{client: client}
}

// DTO de sérialisation : on ne met pas de tags JSON sur le domaine.
type cachedPost struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Body        string    `json:"body"`
	ImagePath   string    `json:"image_path,omitempty"`
	ImageHeight int       `json:"image_height,omitempty"`
	VideoPath   string    `json:"video_path,omitempty"`
	Sensitive   bool      `json:"sensitive,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	RepostOf    string    `json:"repost_of,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *RedisViewCache) GetHomePage(ctx context.Context) ([]*domain.Post, bool, error) {
	raw, err := c.client.Get(ctx, homeViewKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss, pas une erreur
		}
		return nil, false, fmt.Errorf("redis: get home view: %w", err)
	}

	var dtos []cachedPost
	if err := json.Unmarshal(raw, &dtos); err != nil {
		// Donnée corrompue : on la jette et on laisse le lecteur repartir de la DB
		_ = c.client.Del(ctx, homeViewKey).Err()
		return nil, false, nil
	}

	posts := make([]*domain.Post, len(dtos))
	for i, d := range dtos {
		posts[i] = toDomain(d)
	}
	return posts, true, nil
}

func (c *RedisViewCache) SetHomePage(ctx context.Context, posts []*domain.Post) error {
	dtos := make([]cachedPost, len(posts))
	for i, p := range posts {
		dtos[i] = toDTO(p)
	}

	raw, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("redis: marshal home view: %w", err)
	}
	return c.client.Set(ctx, homeViewKey, raw, homeViewTTL).Err()
}

func (c *RedisViewCache) GetPostView(ctx context.Context, postID string) (*domain.Post, bool, error) {
	raw, err := c.client.Get(ctx, postViewKey(postID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get post view: %w", err)
	}

	var d cachedPost
	if err := json.Unmarshal(raw, &d); err != nil {
		_ = c.client.Del(ctx, postViewKey(postID)).Err()
		return nil, false, nil
	}
	return toDomain(d), true, nil
}

func (c *RedisViewCache) SetPostView(ctx context.Context, post *domain.Post) error {
	raw, err := json.Marshal(toDTO(post))
	if err != nil {
		return fmt.Errorf("redis: marshal post view: %w", err)
	}
	return c.client.Set(ctx, postViewKey(post.ID), raw, homeViewTTL).Err()
}

func (c *RedisViewCache) InvalidateHome(ctx context.Context) error {
	return c.client.Del(ctx, homeViewKey).Err()
}

func (c *RedisViewCache) InvalidatePost(ctx context.Context, postID string) error {
	return c.client.Del(ctx, postViewKey(postID)).Err()
}

func postViewKey(postID string) string {
	return fmt.Sprintf("view:post:%s", postID)
}

// --- MAPPING DTO <-> DOMAINE ---

func toDTO(p *domain.Post) cachedPost {
	return cachedPost{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		Body:        p.Body,
		ImagePath:   p.ImagePath,
		ImageHeight: p.ImageHeight,
		VideoPath:   p.VideoPath,
		Sensitive:   p.Sensitive,
		ParentID:    p.ParentID,
		RepostOf:    p.RepostOf,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomain(d cachedPost) *domain.Post {
	return &domain.Post{
		ID:          d.ID,
		AuthorID:    d.AuthorID,
		Body:        d.Body,
		ImagePath:   d.ImagePath,
		ImageHeight: d.ImageHeight,
		VideoPath:   d.VideoPath,
		Sensitive:   d.Sensitive,
		ParentID:    d.ParentID,
		RepostOf:    d.RepostOf,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
