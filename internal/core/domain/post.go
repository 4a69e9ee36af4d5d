package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrDuplicateRepost = errors.New("repost already exists")
)

// MaxBodyLength est la limite dure du corps d'un post/commentaire (en runes).
const MaxBodyLength = 140

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Post est un post top-level, un commentaire (ParentID non vide) ou un
// repost (RepostOf non vide, corps vide). Jamais modifié ni supprimé par le
// core, sauf le cas du toggle repost qui supprime sa propre ligne.
type Post struct {
	ID          string
	AuthorID    string
	Body        string
	ImagePath   string
	ImageHeight int
	VideoPath   string
	Sensitive   bool
	ParentID    string
	RepostOf    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPost construit un post top-level validé. Le média (déjà uploadé) est
// attaché après coup via AttachMedia.
func NewPost(authorID, body string, sensitive bool) (*Post, error) {
	if err := ValidateBody(body); err != nil {
		return nil, err
	}
	return newPost(authorID, body, sensitive), nil
}

// NewComment construit un commentaire rattaché à un parent.
func NewComment(authorID, parentID, body string) (*Post, error) {
	fields := FieldErrors{}
	if _, err := uuid.Parse(parentID); err != nil {
		fields["parentPostId"] = "must reference an existing post"
	}
	validateBodyInto(body, fields)
	if len(fields) > 0 {
		return nil, fields
	}
	p := newPost(authorID, body, false)
	p.ParentID = parentID
	return p, nil
}

// NewRepost construit la ligne de repost (corps vide, référence la source).
func NewRepost(authorID, sourceID string) *Post {
	p := newPost(authorID, "", false)
	p.RepostOf = sourceID
	return p
}

// AttachMedia classe le résultat d'upload : image (chemin + hauteur) ou vidéo.
func (p *Post) AttachMedia(mediaType MediaType, path string, height int) {
	if mediaType == MediaTypeVideo {
		p.VideoPath = path
		return
	}
	p.ImagePath = path
	p.ImageHeight = height
}

// IsComment indique si la ligne est un commentaire.
func (p *Post) IsComment() bool { return p.ParentID != "" }

// IsRepost indique si la ligne est un repost.
func (p *Post) IsRepost() bool { return p.RepostOf != "" }

func newPost(authorID, body string, sensitive bool) *Post {
	now := time.Now().UTC()
	return &Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Body:      body,
		Sensitive: sensitive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateBody vérifie le corps d'un post. Retourne une FieldErrors
// exploitable telle quelle par la couche HTTP.
func ValidateBody(body string) error {
	fields := FieldErrors{}
	validateBodyInto(body, fields)
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func validateBodyInto(body string, fields FieldErrors) {
	if body == "" {
		fields["desc"] = "required"
	} else if utf8.RuneCountInString(body) > MaxBodyLength {
		fields["desc"] = "must be 140 characters or fewer"
	}
}
