package graph

import (
	"context"

	"github.com/jupiterclapton/skylark/internal/core/ports"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jFollowGraph est la projection du graphe de follow. Elle n'est PAS la
// source de vérité (c'est la table relationship_edges) : elle est alimentée
// en best-effort et ne sert qu'aux lectures de graphe (recommandations).
type Neo4jFollowGraph struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jFollowGraph(driver neo4j.DriverWithContext) ports.FollowGraph {
	return &Neo4jFollowGraph{driver: driver}
}

// EnsureSchema crée la contrainte d'unicité sur Actor.id (et donc l'index)
// pour des lookups O(1). Idempotent.
func (g *Neo4jFollowGraph) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `CREATE CONSTRAINT actor_id_unique IF NOT EXISTS FOR (a:Actor) REQUIRE a.id IS UNIQUE`
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	return err
}

// Link : MERGE est idempotent, rejouer la projection ne duplique rien.
func (g *Neo4jFollowGraph) Link(ctx context.Context, actorID, targetID string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (a:Actor {id: $actorId})
			MERGE (b:Actor {id: $targetId})
			MERGE (a)-[r:FOLLOWS]->(b)
			ON CREATE SET r.created_at = datetime()
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"actorId":  actorID,
			"targetId": targetID,
		})
		return nil, err
	})
	return err
}

func (g *Neo4jFollowGraph) Unlink(ctx context.Context, actorID, targetID string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (a:Actor {id: $actorId})-[r:FOLLOWS]->(b:Actor {id: $targetId})
			DELETE r
		`
		_, err := tx.Run(ctx, query, map[string]any{"actorId": actorID, "targetId": targetID})
		return nil, err
	})
	return err
}

// Recommend : amis d'amis, pondérés par le nombre de chemins, en excluant
// soi-même et les acteurs déjà suivis.
func (g *Neo4jFollowGraph) Recommend(ctx context.Context, actorID string, limit int) ([]string, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (me:Actor {id: $actorId})-[:FOLLOWS]->(:Actor)-[:FOLLOWS]->(candidate:Actor)
			WHERE candidate.id <> $actorId
			  AND NOT (me)-[:FOLLOWS]->(candidate)
			RETURN candidate.id AS id, count(*) AS paths
			ORDER BY paths DESC
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{"actorId": actorID, "limit": limit})
		if err != nil {
			return nil, err
		}

		var ids []string
		for res.Next(ctx) {
			if id, ok := res.Record().Get("id"); ok {
				ids = append(ids, id.(string))
			}
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}
