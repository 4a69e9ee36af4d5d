package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

type PostPostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostPostgresRepo(pool *pgxpool.Pool) ports.PostRepository {
	return &PostPostgresRepo{db: pool}
}

const postColumns = `id, author_id, body, image_path, image_height, video_path, sensitive, parent_id, repost_of, created_at, updated_at`

// Save insère la ligne. L'index UNIQUE partiel (author_id, repost_of) joue
// pour les reposts le même rôle que la contrainte des edges : doublon
// (concurrent ou non) -> ErrDuplicateRepost -> le service supprime.
func (r *PostPostgresRepo) Save(ctx context.Context, post *domain.Post) error {
	q := `
		INSERT INTO posts (id, author_id, body, image_path, image_height, video_path, sensitive, parent_id, repost_of, created_at, updated_at)
		VALUES (@id, @author_id, @body, @image_path, @image_height, @video_path, @sensitive, @parent_id, @repost_of, @created_at, @updated_at)
	`
	args := pgx.NamedArgs{
		"id":           post.ID,
		"author_id":    post.AuthorID,
		"body":         post.Body,
		"image_path":   post.ImagePath,
		"image_height": post.ImageHeight,
		"video_path":   post.VideoPath,
		"sensitive":    post.Sensitive,
		"parent_id":    nullable(post.ParentID),
		"repost_of":    nullable(post.RepostOf),
		"created_at":   post.CreatedAt,
		"updated_at":   post.UpdatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		if isUniqueViolation(err) && post.IsRepost() {
			return domain.ErrDuplicateRepost
		}
		return fmt.Errorf("db: save post: %w", err)
	}
	return nil
}

func (r *PostPostgresRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRow(ctx, q, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("db: find post: %w", err)
	}
	return post, nil
}

func (r *PostPostgresRepo) DeleteRepost(ctx context.Context, authorID, sourceID string) error {
	q := `DELETE FROM posts WHERE author_id = $1 AND repost_of = $2`

	tag, err := r.db.Exec(ctx, q, authorID, sourceID)
	if err != nil {
		return fmt.Errorf("db: delete repost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ListHome : pagination keyset sur created_at (jamais d'OFFSET).
func (r *PostPostgresRepo) ListHome(ctx context.Context, limit int, cursorTime time.Time) ([]*domain.Post, error) {
	var rows pgx.Rows
	var err error

	if cursorTime.IsZero() {
		q := `SELECT ` + postColumns + ` FROM posts WHERE parent_id IS NULL ORDER BY created_at DESC LIMIT $1`
		rows, err = r.db.Query(ctx, q, limit)
	} else {
		q := `SELECT ` + postColumns + ` FROM posts WHERE parent_id IS NULL AND created_at < $1 ORDER BY created_at DESC LIMIT $2`
		rows, err = r.db.Query(ctx, q, cursorTime, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("db: list home: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db: scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// --- HELPERS ---

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	var parentID, repostOf sql.NullString

	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Body,
		&p.ImagePath, &p.ImageHeight, &p.VideoPath,
		&p.Sensitive, &parentID, &repostOf,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ParentID = parentID.String
	p.RepostOf = repostOf.String
	return &p, nil
}

// nullable traduit "" en NULL (les colonnes parent_id/repost_of sont
// nullables ; l'index UNIQUE partiel des reposts suppose NULL, pas "").
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
