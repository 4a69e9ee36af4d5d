package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

type EdgePostgresRepo struct {
	db *pgxpool.Pool
}

func NewEdgePostgresRepo(pool *pgxpool.Pool) ports.EdgeRepository {
	return &EdgePostgresRepo{db: pool}
}

// Insert tente la création. La contrainte UNIQUE (actor_id, target_id, kind)
// est la garantie finale de l'invariant "au plus un edge par tuple" : en cas
// de doublon (y compris concurrent), on remonte ErrDuplicateEdge et le
// service bascule en suppression.
func (r *EdgePostgresRepo) Insert(ctx context.Context, edge *domain.RelationshipEdge) error {
	q := `
		INSERT INTO relationship_edges (id, actor_id, target_id, kind, created_at)
		VALUES (@id, @actor_id, @target_id, @kind, @created_at)
	`
	args := pgx.NamedArgs{
		"id":         edge.ID,
		"actor_id":   edge.ActorID,
		"target_id":  edge.TargetID,
		"kind":       string(edge.Kind),
		"created_at": edge.CreatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEdge
		}
		return fmt.Errorf("db: insert edge: %w", err)
	}
	return nil
}

func (r *EdgePostgresRepo) DeleteByKey(ctx context.Context, actorID, targetID string, kind domain.EdgeKind) error {
	q := `DELETE FROM relationship_edges WHERE actor_id = $1 AND target_id = $2 AND kind = $3`

	tag, err := r.db.Exec(ctx, q, actorID, targetID, string(kind))
	if err != nil {
		return fmt.Errorf("db: delete edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEdgeNotFound
	}
	return nil
}

// FollowStatus : les deux sens en une seule requête.
func (r *EdgePostgresRepo) FollowStatus(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	q := `
		SELECT
			EXISTS(SELECT 1 FROM relationship_edges WHERE actor_id = $1 AND target_id = $2 AND kind = 'follow'),
			EXISTS(SELECT 1 FROM relationship_edges WHERE actor_id = $2 AND target_id = $1 AND kind = 'follow')
	`

	var status domain.RelationStatus
	err := r.db.QueryRow(ctx, q, actorID, targetID).Scan(&status.IsFollowing, &status.IsFollowedBy)
	if err != nil {
		return nil, fmt.Errorf("db: follow status: %w", err)
	}
	return &status, nil
}
