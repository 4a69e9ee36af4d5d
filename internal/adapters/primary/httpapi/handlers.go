package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jupiterclapton/skylark/internal/core/ports"
)

// Taille max d'un formulaire multipart gardée en mémoire avant débordement disque
const maxMultipartMemory = 32 << 20 // 32 MB

// --- TOGGLES ---
// Ces quatre handlers partagent le contrat : appelant anonyme = no-op
// silencieux (200 vide), l'état résultant n'est jamais renvoyé (le front
// relit pour le connaître).

func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	if err := s.interactions.ToggleFollow(r.Context(), actorID(r.Context()), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	if err := s.interactions.ToggleLike(r.Context(), actorID(r.Context()), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleToggleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.interactions.ToggleSave(r.Context(), actorID(r.Context()), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleToggleRepost(w http.ResponseWriter, r *http.Request) {
	if err := s.interactions.ToggleRepost(r.Context(), actorID(r.Context()), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w)
}

// --- COMPOSE ---

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeFailure(w, http.StatusBadRequest, nil)
		return
	}

	sensitive, _ := strconv.ParseBool(r.FormValue("isSensitive"))

	file, err := optionalFile(r, "file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, nil)
		return
	}

	cmd := ports.ComposeCmd{
		ActorID:   actorID(r.Context()),
		Body:      r.FormValue("desc"),
		Sensitive: sensitive,
		Aspect:    ports.AspectMode(r.FormValue("imgType")),
		File:      file,
	}

	post, err := s.compose.CreatePost(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPostDTO(post))
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	cmd := ports.CommentCmd{
		ActorID:      actorID(r.Context()),
		ParentPostID: r.PathValue("id"),
		Body:         r.FormValue("desc"),
	}

	comment, err := s.compose.CreateComment(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPostDTO(comment))
}

// --- PROFIL ---

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		writeFailure(w, http.StatusUnauthorized, nil)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeFailure(w, http.StatusBadRequest, nil)
		return
	}

	avatar, err := optionalFile(r, "avatar")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, nil)
		return
	}
	cover, err := optionalFile(r, "cover")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, nil)
		return
	}

	cmd := ports.UpdateProfileCmd{
		ActorID:     principal.SubjectID,
		Username:    principal.Username,
		DisplayName: optionalField(r, "displayName"),
		Bio:         optionalField(r, "bio"),
		Location:    optionalField(r, "location"),
		Website:     optionalField(r, "website"),
		Avatar:      avatar,
		Cover:       cover,
	}

	actor, err := s.profile.UpdateProfile(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toActorDTO(actor))
}

func (s *Server) handleGetPublicProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profile.GetPublicProfile(r.Context(), r.PathValue("username"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPublicProfileDTO(profile))
}

// --- LECTURES ---

func (s *Server) handleHomeTimeline(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, nextToken, err := s.timeline.HomeTimeline(r.Context(), limit, r.URL.Query().Get("page_token"))
	if err != nil {
		respondError(w, err)
		return
	}

	dtos := make([]postDTO, len(posts))
	for i, p := range posts {
		dtos[i] = toPostDTO(p)
	}
	respondJSON(w, http.StatusOK, timelineDTO{Posts: dtos, NextPageToken: nextToken})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.timeline.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPostDTO(post))
}

func (s *Server) handleFollowStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.interactions.FollowStatus(r.Context(), actorID(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, relationDTO{
		IsFollowing:  status.IsFollowing,
		IsFollowedBy: status.IsFollowedBy,
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ids, err := s.interactions.Recommendations(r.Context(), actorID(r.Context()), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recommendationsDTO{ActorIDs: ids})
}

// --- PRÉSENCE ---

func (s *Server) handleSessionConnect(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		writeFailure(w, http.StatusUnauthorized, nil)
		return
	}

	if err := s.profile.Connect(r.Context(), principal.SubjectID, principal.Username); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w)
}

// --- HELPERS ---

// optionalField distingue "champ absent" (nil) de "champ vide" ("") :
// c'est ce qui permet au patch profil de ne pas écraser les valeurs existantes.
func optionalField(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func optionalFile(r *http.Request, name string) (*ports.FileUpload, error) {
	file, header, err := r.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil // Input file vide = pas de fichier
	}

	return &ports.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
