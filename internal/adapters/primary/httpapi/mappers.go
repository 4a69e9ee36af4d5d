package httpapi

import (
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
)

// DTO côté API : on ne met jamais de tags JSON sur les entités du domaine.

type postDTO struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Body        string    `json:"desc"`
	ImagePath   string    `json:"img,omitempty"`
	ImageHeight int       `json:"imgHeight,omitempty"`
	VideoPath   string    `json:"video,omitempty"`
	Sensitive   bool      `json:"isSensitive"`
	ParentID    string    `json:"parentPostId,omitempty"`
	RepostOf    string    `json:"rePostId,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type timelineDTO struct {
	Posts         []postDTO `json:"posts"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

type actorDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	AvatarPath  string `json:"img,omitempty"`
	CoverPath   string `json:"cover,omitempty"`
}

type publicProfileDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarPath  string `json:"img,omitempty"`
	Bio         string `json:"bio"`
}

type relationDTO struct {
	IsFollowing  bool `json:"isFollowing"`
	IsFollowedBy bool `json:"isFollowedBy"`
}

type recommendationsDTO struct {
	ActorIDs []string `json:"actor_ids"`
}

func toPostDTO(p *domain.Post) postDTO {
	return postDTO{
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
	}
}

func toActorDTO(a *domain.Actor) actorDTO {
	return actorDTO{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Bio:         a.Bio,
		Location:    a.Location,
		Website:     a.Website,
		AvatarPath:  a.AvatarPath,
		CoverPath:   a.CoverPath,
	}
}

func toPublicProfileDTO(p *domain.PublicProfile) publicProfileDTO {
	return publicProfileDTO{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarPath:  p.AvatarPath,
		Bio:         p.Bio,
	}
}
