package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

// Fakes in-memory des ports secondaires. Le fake d'edges reproduit le
// comportement de la contrainte UNIQUE de Postgres (mutex + index par clé),
// ce qui permet de tester la mécanique de toggle sous concurrence réelle.

type edgeKey struct {
	actorID, targetID string
	kind              domain.EdgeKind
}

type fakeEdgeRepo struct {
	mu    sync.Mutex
	edges map[edgeKey]*domain.RelationshipEdge
	fail  error
}

func newFakeEdgeRepo() *fakeEdgeRepo {
	return &fakeEdgeRepo{edges: map[edgeKey]*domain.RelationshipEdge{}}
}

func (r *fakeEdgeRepo) Insert(_ context.Context, edge *domain.RelationshipEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	key := edgeKey{edge.ActorID, edge.TargetID, edge.Kind}
	if _, exists := r.edges[key]; exists {
		return domain.ErrDuplicateEdge
	}
	r.edges[key] = edge
	return nil
}

func (r *fakeEdgeRepo) DeleteByKey(_ context.Context, actorID, targetID string, kind domain.EdgeKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	key := edgeKey{actorID, targetID, kind}
	if _, exists := r.edges[key]; !exists {
		return domain.ErrEdgeNotFound
	}
	delete(r.edges, key)
	return nil
}

func (r *fakeEdgeRepo) FollowStatus(_ context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, following := r.edges[edgeKey{actorID, targetID, domain.EdgeFollow}]
	_, followedBy := r.edges[edgeKey{targetID, actorID, domain.EdgeFollow}]
	return &domain.RelationStatus{IsFollowing: following, IsFollowedBy: followedBy}, nil
}

func (r *fakeEdgeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edges)
}

func (r *fakeEdgeRepo) has(actorID, targetID string, kind domain.EdgeKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.edges[edgeKey{actorID, targetID, kind}]
	return ok
}

type repostKey struct{ authorID, sourceID string }

type fakePostRepo struct {
	mu      sync.Mutex
	posts   map[string]*domain.Post
	reposts map[repostKey]string // -> post ID
	saveErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*domain.Post{}, reposts: map[repostKey]string{}}
}

func (r *fakePostRepo) Save(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if post.IsRepost() {
		key := repostKey{post.AuthorID, post.RepostOf}
		if _, exists := r.reposts[key]; exists {
			return domain.ErrDuplicateRepost
		}
		r.reposts[key] = post.ID
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, postID string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

func (r *fakePostRepo) DeleteRepost(_ context.Context, authorID, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := repostKey{authorID, sourceID}
	id, ok := r.reposts[key]
	if !ok {
		return domain.ErrPostNotFound
	}
	delete(r.reposts, key)
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) ListHome(_ context.Context, limit int, cursorTime time.Time) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Post
	for _, p := range r.posts {
		if p.IsComment() {
			continue
		}
		if !cursorTime.IsZero() && !p.CreatedAt.Before(cursorTime) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

type fakeActorRepo struct {
	mu        sync.Mutex
	actors    map[string]*domain.Actor
	ensureErr error
	updateErr error
}

func newFakeActorRepo() *fakeActorRepo {
	return &fakeActorRepo{actors: map[string]*domain.Actor{}}
}

func (r *fakeActorRepo) Ensure(_ context.Context, actor *domain.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensureErr != nil {
		return r.ensureErr
	}
	if _, exists := r.actors[actor.ID]; !exists {
		r.actors[actor.ID] = actor
	}
	return nil
}

func (r *fakeActorRepo) GetByID(_ context.Context, id string) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, ok := r.actors[id]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	return actor, nil
}

func (r *fakeActorRepo) GetByUsername(_ context.Context, username string) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actors {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, domain.ErrActorNotFound
}

func (r *fakeActorRepo) UpdateProfile(_ context.Context, actorID string, patch domain.ProfilePatch) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	actor, ok := r.actors[actorID]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	actor.Apply(patch)
	return actor, nil
}

type fakeMediaStore struct {
	mu     sync.Mutex
	result *ports.UploadResult
	err    error
	calls  []ports.UploadInput
}

func (m *fakeMediaStore) Upload(_ context.Context, in ports.UploadInput) (*ports.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, in)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &ports.UploadResult{Path: "/uploads/" + in.FileName, Type: domain.MediaTypeImage, Height: 400}, nil
}

type fakeIdentitySync struct {
	nameErr    error
	avatarErr  error
	namePushes []string
	avatarPush int
}

func (f *fakeIdentitySync) PushDisplayName(_ context.Context, _, displayName string) error {
	f.namePushes = append(f.namePushes, displayName)
	return f.nameErr
}

func (f *fakeIdentitySync) PushAvatar(_ context.Context, _ string, _ ports.FileUpload) error {
	f.avatarPush++
	return f.avatarErr
}

type fakeViewCache struct {
	mu               sync.Mutex
	home             []*domain.Post
	postViews        map[string]*domain.Post
	homeInvalidated  int
	postsInvalidated []string
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{postViews: map[string]*domain.Post{}}
}

func (c *fakeViewCache) GetHomePage(_ context.Context) ([]*domain.Post, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.home, c.home != nil, nil
}

func (c *fakeViewCache) SetHomePage(_ context.Context, posts []*domain.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.home = posts
	return nil
}

func (c *fakeViewCache) GetPostView(_ context.Context, postID string) (*domain.Post, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.postViews[postID]
	return p, ok, nil
}

func (c *fakeViewCache) SetPostView(_ context.Context, post *domain.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postViews[post.ID] = post
	return nil
}

func (c *fakeViewCache) InvalidateHome(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.home = nil
	c.homeInvalidated++
	return nil
}

func (c *fakeViewCache) InvalidatePost(_ context.Context, postID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.postViews, postID)
	c.postsInvalidated = append(c.postsInvalidated, postID)
	return nil
}

type publishedEvent struct {
	subject string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishPostCreated(_ context.Context, post *domain.Post) error {
	p.record("post.created", post)
	return p.err
}

func (p *fakePublisher) PublishFollowChanged(_ context.Context, actorID, targetID string, following bool) error {
	subject := "follow.deleted"
	if following {
		subject = "follow.created"
	}
	p.record(subject, [2]string{actorID, targetID})
	return p.err
}

func (p *fakePublisher) PublishUserConnected(_ context.Context, actorID, username string) error {
	p.record("presence.user.connected", [2]string{actorID, username})
	return p.err
}

func (p *fakePublisher) record(subject string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{subject, payload})
}

func (p *fakePublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type fakeFollowGraph struct {
	mu         sync.Mutex
	links      map[[2]string]bool
	linkErr    error
	recommends []string
}

func newFakeFollowGraph() *fakeFollowGraph {
	return &fakeFollowGraph{links: map[[2]string]bool{}}
}

func (g *fakeFollowGraph) EnsureSchema(context.Context) error { return nil }

func (g *fakeFollowGraph) Link(_ context.Context, actorID, targetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.linkErr != nil {
		return g.linkErr
	}
	g.links[[2]string{actorID, targetID}] = true
	return nil
}

func (g *fakeFollowGraph) Unlink(_ context.Context, actorID, targetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.links, [2]string{actorID, targetID})
	return nil
}

func (g *fakeFollowGraph) Recommend(context.Context, string, int) ([]string, error) {
	return g.recommends, nil
}

var errStorageDown = errors.New("storage unavailable")
