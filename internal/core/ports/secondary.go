package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
)

// --- PERSISTANCE (DB) ---

// ActorRepository gère les lignes acteurs.
type ActorRepository interface {
	// Ensure crée la ligne si elle n'existe pas (provisioning implicite à la
	// première action authentifiée). Idempotent.
	Ensure(ctx context.Context, actor *domain.Actor) error
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
	GetByUsername(ctx context.Context, username string) (*domain.Actor, error)
	// UpdateProfile applique le patch ; les champs nil restent intacts.
	UpdateProfile(ctx context.Context, actorID string, patch domain.ProfilePatch) (*domain.Actor, error)
}

// EdgeRepository gère les edges follow/like/save.
// Insert DOIT retourner domain.ErrDuplicateEdge si la contrainte UNIQUE
// (actor_id, target_id, kind) est violée : c'est le pivot du toggle.
type EdgeRepository interface {
	Insert(ctx context.Context, edge *domain.RelationshipEdge) error
	// DeleteByKey retourne domain.ErrEdgeNotFound si rien à supprimer
	// (toléré par l'appelant : double-delete concurrent bénin).
	DeleteByKey(ctx context.Context, actorID, targetID string, kind domain.EdgeKind) error
	FollowStatus(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error)
}

// PostRepository gère les lignes de contenu.
type PostRepository interface {
	// Save retourne domain.ErrDuplicateRepost si (author_id, repost_of)
	// existe déjà (même mécanique de toggle que les edges).
	Save(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, postID string) (*domain.Post, error)
	// DeleteRepost supprime la ligne de repost de cet auteur pour cette
	// source ; domain.ErrPostNotFound si absente.
	DeleteRepost(ctx context.Context, authorID, sourceID string) error
	// ListHome : pagination keyset, cursorTime zéro = première page.
	ListHome(ctx context.Context, limit int, cursorTime time.Time) ([]*domain.Post, error)
}

// --- SERVICES EXTERNES ---

type UploadInput struct {
	FileName       string
	Folder         string // namespace côté media service : "/posts", "/profiles", "/covers"
	ContentType    string
	Transformation string // hint de pré-transformation, vide = aucune
	Data           []byte
}

type UploadResult struct {
	Path   string
	Type   domain.MediaType
	Height int // renseigné pour les images uniquement
}

// MediaStore est le service d'upload/transformation de médias (boîte noire).
type MediaStore interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}

// IdentitySync pousse nos changements de profil vers le provider d'identité.
// Les deux appels sont best-effort côté appelant : un échec est loggé et
// avalé, jamais propagé comme échec d'opération.
type IdentitySync interface {
	PushDisplayName(ctx context.Context, actorID, displayName string) error
	PushAvatar(ctx context.Context, actorID string, file FileUpload) error
}

// --- CACHE DE VUES ---

// ViewCache est le cache des vues matérialisées (première page de la home,
// détail d'un post). Invalidate est fire-and-forget pour l'appelant.
type ViewCache interface {
	GetHomePage(ctx context.Context) ([]*domain.Post, bool, error)
	SetHomePage(ctx context.Context, posts []*domain.Post) error
	GetPostView(ctx context.Context, postID string) (*domain.Post, bool, error)
	SetPostView(ctx context.Context, post *domain.Post) error
	InvalidateHome(ctx context.Context) error
	InvalidatePost(ctx context.Context, postID string) error
}

// --- MESSAGERIE (BROKER) ---

// EventPublisher notifie les autres services (feed, notifications, présence).
// Tous les publishes sont best-effort du point de vue des opérations métier.
type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishFollowChanged(ctx context.Context, actorID, targetID string, following bool) error
	PublishUserConnected(ctx context.Context, actorID, username string) error
}

// --- GRAPHE SOCIAL ---

// FollowGraph est la projection Neo4j du graphe de follow. Miroir best-effort :
// la vérité reste la table edges côté Postgres.
type FollowGraph interface {
	EnsureSchema(ctx context.Context) error
	Link(ctx context.Context, actorID, targetID string) error
	Unlink(ctx context.Context, actorID, targetID string) error
	// Recommend retourne des IDs d'acteurs "amis d'amis" non encore suivis.
	Recommend(ctx context.Context, actorID string, limit int) ([]string, error)
}
