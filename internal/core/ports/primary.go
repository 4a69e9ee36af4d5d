package ports

import (
	"context"

	"github.com/jupiterclapton/skylark/internal/core/domain"
)

// --- PORTS PRIMAIRES (Driving) ---
// C'est l'adapter HTTP qui appelle ces interfaces, jamais l'inverse.

// InteractionService porte les quatre mutations toggle.
// Contrat commun : actorID vide = appelant non authentifié = no-op silencieux
// (on retourne nil sans toucher au stockage, ce n'est PAS une erreur).
type InteractionService interface {
	ToggleFollow(ctx context.Context, actorID, targetActorID string) error
	ToggleLike(ctx context.Context, actorID, postID string) error
	ToggleSave(ctx context.Context, actorID, postID string) error
	ToggleRepost(ctx context.Context, actorID, sourcePostID string) error

	FollowStatus(ctx context.Context, actorID, targetActorID string) (*domain.RelationStatus, error)
	Recommendations(ctx context.Context, actorID string, limit int) ([]string, error)
}

// FileUpload est un fichier reçu tel quel du formulaire multipart.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// AspectMode est le cadrage demandé pour une image uploadée.
type AspectMode string

const (
	AspectOriginal AspectMode = "original"
	AspectSquare   AspectMode = "square" // 1:1
	AspectWide     AspectMode = "wide"   // 16:9
)

type ComposeCmd struct {
	ActorID   string
	Body      string
	Sensitive bool
	Aspect    AspectMode
	File      *FileUpload // nil = post texte
}

type CommentCmd struct {
	ActorID      string
	ParentPostID string
	Body         string
}

// ComposeService valide et persiste le contenu (posts, commentaires).
// Ici l'authentification manquante est une erreur dure (domain.ErrUnauthenticated).
type ComposeService interface {
	CreatePost(ctx context.Context, cmd ComposeCmd) (*domain.Post, error)
	CreateComment(ctx context.Context, cmd CommentCmd) (*domain.Post, error)
}

// UpdateProfileCmd : les champs texte nil ne sont pas modifiés, les fichiers
// nil ne déclenchent aucun upload.
type UpdateProfileCmd struct {
	ActorID     string
	Username    string
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	Avatar      *FileUpload
	Cover       *FileUpload
}

// ProfileService orchestre la mise à jour du profil et les lectures associées.
type ProfileService interface {
	UpdateProfile(ctx context.Context, cmd UpdateProfileCmd) (*domain.Actor, error)
	GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error)

	// Connect signale l'établissement d'une session (canal de présence,
	// best-effort) et provisionne l'acteur local si nécessaire.
	Connect(ctx context.Context, actorID, username string) error
}

// TimelineService est la partie lecture des posts.
type TimelineService interface {
	HomeTimeline(ctx context.Context, limit int, pageToken string) ([]*domain.Post, string, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
}
