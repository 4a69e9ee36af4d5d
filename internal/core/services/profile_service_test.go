package services

import (
	"context"
	"testing"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture() (*fakeActorRepo, *fakeMediaStore, *fakeIdentitySync, *fakePublisher, ports.ProfileService) {
	actors := newFakeActorRepo()
	media := &fakeMediaStore{}
	identity := &fakeIdentitySync{}
	cache := newFakeViewCache()
	pub := &fakePublisher{}
	svc := NewProfileService(actors, media, identity, cache, pub)
	return actors, media, identity, pub, svc
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile_TextFieldsOnly(t *testing.T) {
	actors, media, _, _, svc := newProfileFixture()

	// Acteur existant avec des chemins déjà en place
	existing := domain.NewActor("alice", "alice_sky")
	existing.AvatarPath = "/profiles/old.jpg"
	existing.CoverPath = "/covers/old.jpg"
	require.NoError(t, actors.Ensure(context.Background(), existing))

	actor, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{
		ActorID:     "alice",
		Username:    "alice_sky",
		DisplayName: strPtr("Alice"),
		Bio:         strPtr("flying high"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice", actor.DisplayName)
	assert.Equal(t, "flying high", actor.Bio)
	// Sans fichier fourni, les chemins existants restent intacts
	assert.Equal(t, "/profiles/old.jpg", actor.AvatarPath)
	assert.Equal(t, "/covers/old.jpg", actor.CoverPath)
	assert.Empty(t, media.calls)
}

func TestUpdateProfile_AvatarUploadAndSync(t *testing.T) {
	_, media, identity, _, svc := newProfileFixture()
	media.result = &ports.UploadResult{Path: "/profiles/new.jpg", Type: domain.MediaTypeImage, Height: 200}

	actor, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{
		ActorID:  "alice",
		Username: "alice_sky",
		Avatar:   &ports.FileUpload{Name: "new.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
	})

	require.NoError(t, err)
	assert.Equal(t, "/profiles/new.jpg", actor.AvatarPath)
	require.Len(t, media.calls, 1)
	assert.Equal(t, "/profiles", media.calls[0].Folder)
	assert.Empty(t, media.calls[0].Transformation, "pas de transformation sur l'avatar")
	assert.Equal(t, 1, identity.avatarPush)
}

func TestUpdateProfile_IdentitySyncFailureIsSwallowed(t *testing.T) {
	_, media, identity, _, svc := newProfileFixture()
	media.result = &ports.UploadResult{Path: "/profiles/new.jpg", Type: domain.MediaTypeImage}
	identity.avatarErr = errStorageDown
	identity.nameErr = errStorageDown

	actor, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{
		ActorID:     "alice",
		Username:    "alice_sky",
		DisplayName: strPtr("Alice"),
		Avatar:      &ports.FileUpload{Name: "new.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
	})

	// Le sync provider est best-effort : l'opération reste un succès
	// et le chemin local est bien mis à jour.
	require.NoError(t, err)
	assert.Equal(t, "/profiles/new.jpg", actor.AvatarPath)
	assert.Equal(t, "Alice", actor.DisplayName)
}

func TestUpdateProfile_CoverHasNoProviderSync(t *testing.T) {
	_, media, identity, _, svc := newProfileFixture()
	media.result = &ports.UploadResult{Path: "/covers/new.jpg", Type: domain.MediaTypeImage}

	actor, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{
		ActorID:  "alice",
		Username: "alice_sky",
		Cover:    &ports.FileUpload{Name: "new.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
	})

	require.NoError(t, err)
	assert.Equal(t, "/covers/new.jpg", actor.CoverPath)
	require.Len(t, media.calls, 1)
	assert.Equal(t, "/covers", media.calls[0].Folder)
	assert.Zero(t, identity.avatarPush)
	assert.Empty(t, identity.namePushes)
}

func TestUpdateProfile_UploadFailureAborts(t *testing.T) {
	actors, media, _, _, svc := newProfileFixture()
	media.err = errStorageDown

	existing := domain.NewActor("alice", "alice_sky")
	existing.Bio = "original bio"
	require.NoError(t, actors.Ensure(context.Background(), existing))

	_, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{
		ActorID:  "alice",
		Username: "alice_sky",
		Bio:      strPtr("new bio"),
		Avatar:   &ports.FileUpload{Name: "new.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
	})

	require.Error(t, err)
	// Rien n'a été persisté, pas même les champs texte
	actor, getErr := actors.GetByID(context.Background(), "alice")
	require.NoError(t, getErr)
	assert.Equal(t, "original bio", actor.Bio)
}

func TestUpdateProfile_PersistenceFailureIsGenericFailure(t *testing.T) {
	actors, _, _, _, svc := newProfileFixture()
	actors.updateErr = errStorageDown

	_, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{
		ActorID:  "alice",
		Username: "alice_sky",
		Bio:      strPtr("bio"),
	})

	require.ErrorIs(t, err, errStorageDown)
}

func TestUpdateProfile_Unauthenticated(t *testing.T) {
	_, _, _, _, svc := newProfileFixture()

	_, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileCmd{})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestConnect_ProvisionsActorAndPublishesPresence(t *testing.T) {
	actors, _, _, pub, svc := newProfileFixture()

	require.NoError(t, svc.Connect(context.Background(), "alice", "alice_sky"))

	actor, err := actors.GetByID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice_sky", actor.Username)
	assert.Equal(t, []string{"presence.user.connected"}, pub.subjects())
}

func TestConnect_PresencePublishFailureIsSwallowed(t *testing.T) {
	_, _, _, pub, svc := newProfileFixture()
	pub.err = errStorageDown

	// Le canal de présence est best-effort : pas de garantie de livraison
	require.NoError(t, svc.Connect(context.Background(), "alice", "alice_sky"))
}

func TestGetPublicProfile(t *testing.T) {
	actors, _, _, _, svc := newProfileFixture()

	existing := domain.NewActor("alice", "alice_sky")
	existing.DisplayName = "Alice"
	existing.Bio = "flying high"
	existing.Website = "https://alice.example" // ne doit PAS fuiter dans la vue publique
	require.NoError(t, actors.Ensure(context.Background(), existing))

	profile, err := svc.GetPublicProfile(context.Background(), "alice_sky")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.ID)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "flying high", profile.Bio)

	_, err = svc.GetPublicProfile(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrActorNotFound)
}
