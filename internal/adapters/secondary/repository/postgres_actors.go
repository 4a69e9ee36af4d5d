package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

type ActorPostgresRepo struct {
	db *pgxpool.Pool
}

func NewActorPostgresRepo(pool *pgxpool.Pool) ports.ActorRepository {
	return &ActorPostgresRepo{db: pool}
}

// Ensure : provisioning implicite. ON CONFLICT DO NOTHING rend l'appel
// idempotent, deux premières-actions concurrentes ne se gênent pas.
func (r *ActorPostgresRepo) Ensure(ctx context.Context, actor *domain.Actor) error {
	q := `
		INSERT INTO actors (id, username, display_name, bio, location, website, avatar_path, cover_path, created_at, updated_at)
		VALUES (@id, @username, '', '', '', '', '', '', @created_at, @updated_at)
		ON CONFLICT (id) DO NOTHING
	`
	args := pgx.NamedArgs{
		"id":         actor.ID,
		"username":   actor.Username,
		"created_at": actor.CreatedAt,
		"updated_at": actor.UpdatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("db: ensure actor: %w", err)
	}
	return nil
}

func (r *ActorPostgresRepo) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	q := `SELECT ` + actorColumns + ` FROM actors WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *ActorPostgresRepo) GetByUsername(ctx context.Context, username string) (*domain.Actor, error) {
	q := `SELECT ` + actorColumns + ` FROM actors WHERE username = $1`
	return r.getOne(ctx, q, username)
}

// UpdateProfile : un seul UPDATE, COALESCE pour laisser intacts les champs
// dont le pointeur est nil (jamais de remise à NULL implicite).
func (r *ActorPostgresRepo) UpdateProfile(ctx context.Context, actorID string, patch domain.ProfilePatch) (*domain.Actor, error) {
	q := `
		UPDATE actors SET
			display_name = COALESCE(@display_name, display_name),
			bio          = COALESCE(@bio, bio),
			location     = COALESCE(@location, location),
			website      = COALESCE(@website, website),
			avatar_path  = COALESCE(@avatar_path, avatar_path),
			cover_path   = COALESCE(@cover_path, cover_path),
			updated_at   = @updated_at
		WHERE id = @id
		RETURNING ` + actorColumns

	args := pgx.NamedArgs{
		"id":           actorID,
		"display_name": patch.DisplayName,
		"bio":          patch.Bio,
		"location":     patch.Location,
		"website":      patch.Website,
		"avatar_path":  patch.AvatarPath,
		"cover_path":   patch.CoverPath,
		"updated_at":   time.Now().UTC(),
	}

	actor, err := scanActor(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActorNotFound
		}
		return nil, fmt.Errorf("db: update profile: %w", err)
	}
	return actor, nil
}

// --- HELPERS ---

const actorColumns = `id, username, display_name, bio, location, website, avatar_path, cover_path, created_at, updated_at`

func (r *ActorPostgresRepo) getOne(ctx context.Context, q string, arg any) (*domain.Actor, error) {
	actor, err := scanActor(r.db.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActorNotFound
		}
		return nil, fmt.Errorf("db: get actor: %w", err)
	}
	return actor, nil
}

func scanActor(row pgx.Row) (*domain.Actor, error) {
	var a domain.Actor
	err := row.Scan(
		&a.ID, &a.Username, &a.DisplayName, &a.Bio, &a.Location,
		&a.Website, &a.AvatarPath, &a.CoverPath, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
