package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

type profileService struct {
	actors    ports.ActorRepository
	media     ports.MediaStore
	identity  ports.IdentitySync
	cache     ports.ViewCache
	publisher ports.EventPublisher
}

func NewProfileService(
	actors ports.ActorRepository,
	media ports.MediaStore,
	identity ports.IdentitySync,
	cache ports.ViewCache,
	publisher ports.EventPublisher,
) ports.ProfileService {
	return &profileService{
		actors:    actors,
		media:     media,
		identity:  identity,
		cache:     cache,
		publisher: publisher,
	}
}

// UpdateProfile orchestre la mise à jour en quatre étapes :
//  1. Avatar présent -> upload /profiles, puis push best-effort vers le provider
//  2. Cover présent  -> upload /covers (pas de sync provider pour la cover)
//  3. Push best-effort du display name vers le provider
//  4. UPDATE local unique (champs texte + chemins obtenus ; absent = inchangé)
//
// Le succès dépend UNIQUEMENT de l'étape 4. Les échecs de sync provider sont
// loggés et avalés ; un échec d'upload, lui, interrompt tout (rien persisté).
func (s *profileService) UpdateProfile(ctx context.Context, cmd ports.UpdateProfileCmd) (*domain.Actor, error) {
	if cmd.ActorID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// Provisioning implicite : la ligne doit exister avant l'UPDATE.
	if err := s.actors.Ensure(ctx, domain.NewActor(cmd.ActorID, cmd.Username)); err != nil {
		return nil, fmt.Errorf("ensure actor: %w", err)
	}

	patch := domain.ProfilePatch{
		DisplayName: cmd.DisplayName,
		Bio:         cmd.Bio,
		Location:    cmd.Location,
		Website:     cmd.Website,
	}

	// 1. Avatar
	if cmd.Avatar != nil && len(cmd.Avatar.Data) > 0 {
		result, err := s.media.Upload(ctx, ports.UploadInput{
			FileName:    cmd.Avatar.Name,
			Folder:      "/profiles",
			ContentType: cmd.Avatar.ContentType,
			Data:        cmd.Avatar.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("avatar upload: %w", err)
		}
		patch.AvatarPath = &result.Path

		if err := s.identity.PushAvatar(ctx, cmd.ActorID, *cmd.Avatar); err != nil {
			slog.Warn("⚠️ Identity provider avatar sync failed", "actor_id", cmd.ActorID, "error", err)
		}
	}

	// 2. Cover
	if cmd.Cover != nil && len(cmd.Cover.Data) > 0 {
		result, err := s.media.Upload(ctx, ports.UploadInput{
			FileName:    cmd.Cover.Name,
			Folder:      "/covers",
			ContentType: cmd.Cover.ContentType,
			Data:        cmd.Cover.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("cover upload: %w", err)
		}
		patch.CoverPath = &result.Path
	}

	// 3. Display name -> provider
	if cmd.DisplayName != nil && *cmd.DisplayName != "" {
		if err := s.identity.PushDisplayName(ctx, cmd.ActorID, *cmd.DisplayName); err != nil {
			slog.Warn("⚠️ Identity provider name sync failed", "actor_id", cmd.ActorID, "error", err)
		}
	}

	// 4. Persistance locale (la seule étape qui décide du succès)
	actor, err := s.actors.UpdateProfile(ctx, cmd.ActorID, patch)
	if err != nil {
		return nil, fmt.Errorf("update actor: %w", err)
	}

	if err := s.cache.InvalidateHome(ctx); err != nil {
		slog.Warn("⚠️ Cache invalidation failed", "view", "home", "error", err)
	}
	return actor, nil
}

func (s *profileService) GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	actor, err := s.actors.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return actor.Public(), nil
}

// Connect provisionne l'acteur et annonce sa présence sur le canal temps réel.
// L'annonce est best-effort : aucune garantie de livraison, aucun effet sur
// l'état persisté.
func (s *profileService) Connect(ctx context.Context, actorID, username string) error {
	if actorID == "" {
		return domain.ErrUnauthenticated
	}

	if err := s.actors.Ensure(ctx, domain.NewActor(actorID, username)); err != nil {
		return fmt.Errorf("ensure actor: %w", err)
	}

	if err := s.publisher.PublishUserConnected(ctx, actorID, username); err != nil {
		slog.Warn("⚠️ Presence publish failed", "actor_id", actorID, "error", err)
	}
	return nil
}
