package domain

import (
	"errors"
	"strings"
	"time"
)

// --- ERREURS DU DOMAINE ---
var (
	ErrActorNotFound    = errors.New("actor not found")
	ErrUnauthenticated  = errors.New("caller is not authenticated")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrInvalidReference = errors.New("invalid reference")
)

// --- ENTITÉ ---

// Actor est un utilisateur final. Son ID est le "subject" opaque émis par le
// provider d'identité externe (on ne génère JAMAIS cet ID nous-mêmes).
// La ligne locale est créée implicitement à la première action authentifiée.
type Actor struct {
	ID          string
	Username    string
	DisplayName string
	Bio         string
	Location    string
	Website     string
	AvatarPath  string
	CoverPath   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewActor construit la ligne locale à partir de l'identité externe.
// Pas de validation d'email/mot de passe ici : tout ça vit chez le provider.
func NewActor(subjectID, username string) *Actor {
	now := time.Now().UTC()
	return &Actor{
		ID:        subjectID,
		Username:  strings.TrimSpace(username),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfilePatch décrit une mise à jour partielle du profil.
// Les pointeurs nil signifient "ne pas toucher" (jamais de remise à zéro).
type ProfilePatch struct {
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	AvatarPath  *string
	CoverPath   *string
}

// IsEmpty indique si le patch ne changerait rien.
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Location == nil &&
		p.Website == nil && p.AvatarPath == nil && p.CoverPath == nil
}

// Apply reporte le patch sur l'entité (utilisé par les fakes de test,
// le repo SQL fait la même chose avec COALESCE).
func (a *Actor) Apply(p ProfilePatch) {
	if p.DisplayName != nil {
		a.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.Bio != nil {
		a.Bio = *p.Bio
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.Website != nil {
		a.Website = *p.Website
	}
	if p.AvatarPath != nil {
		a.AvatarPath = *p.AvatarPath
	}
	if p.CoverPath != nil {
		a.CoverPath = *p.CoverPath
	}
	a.UpdatedAt = time.Now().UTC()
}

// PublicProfile est le sous-ensemble exposé par l'API publique (lookup par username).
type PublicProfile struct {
	ID          string
	Username    string
	DisplayName string
	AvatarPath  string
	Bio         string
}

// Public projette l'acteur vers sa vue publique.
func (a *Actor) Public() *PublicProfile {
	return &PublicProfile{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		AvatarPath:  a.AvatarPath,
		Bio:         a.Bio,
	}
}
