package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEdgeNotFound  = errors.New("relationship edge not found")
	ErrDuplicateEdge = errors.New("relationship edge already exists")
)

// EdgeKind est le type de relation. Repost n'est PAS un kind d'edge :
// il est modélisé comme une ligne Post référençant sa source (voir post.go),
// mais obéit aux mêmes sémantiques de toggle.
type EdgeKind string

const (
	EdgeFollow EdgeKind = "follow" // target = un acteur
	EdgeLike   EdgeKind = "like"   // target = un post
	EdgeSave   EdgeKind = "save"   // target = un post
)

// RelationshipEdge est un lien dirigé (actor -> target), unique par
// (actor_id, target_id, kind). L'unicité est garantie par une contrainte
// UNIQUE côté Postgres : c'est elle qui ferme la fenêtre de course du toggle,
// pas un check applicatif.
type RelationshipEdge struct {
	ID        string
	ActorID   string
	TargetID  string
	Kind      EdgeKind
	CreatedAt time.Time
}

// NewEdge génère l'identité ici, pas en DB (convention maison).
func NewEdge(actorID, targetID string, kind EdgeKind) *RelationshipEdge {
	return &RelationshipEdge{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		TargetID:  targetID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// RelationStatus est utilisé par l'UI pour afficher l'état follow/followed.
type RelationStatus struct {
	IsFollowing  bool
	IsFollowedBy bool
}
