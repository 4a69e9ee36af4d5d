package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Sujets NATS (contrat implicite avec les services feed/notification/présence)
const (
	subjectPostCreated   = "post.created"
	subjectFollowCreated = "follow.created"
	subjectFollowDeleted = "follow.deleted"
	subjectUserConnected = "presence.user.connected"
)

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) ports.EventPublisher {
	return &NatsPublisher{nc: nc}
}

type postCreatedEvent struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	Type      string    `json:"type"` // "post", "comment", "repost", "image", "video"
	ParentID  string    `json:"parent_id,omitempty"`
	RepostOf  string    `json:"repost_of,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	event := postCreatedEvent{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Body:      post.Body,
		Type:      contentType(post),
		ParentID:  post.ParentID,
		RepostOf:  post.RepostOf,
		CreatedAt: post.CreatedAt,
	}
	return p.publish(ctx, subjectPostCreated, event)
}

type followChangedEvent struct {
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id"`
}

func (p *NatsPublisher) PublishFollowChanged(ctx context.Context, actorID, targetID string, following bool) error {
	subject := subjectFollowDeleted
	if following {
		subject = subjectFollowCreated
	}
	return p.publish(ctx, subject, followChangedEvent{ActorID: actorID, TargetID: targetID})
}

type userConnectedEvent struct {
	ActorID  string `json:"actor_id"`
	Username string `json:"username"`
}

func (p *NatsPublisher) PublishUserConnected(ctx context.Context, actorID, username string) error {
	return p.publish(ctx, subjectUserConnected, userConnectedEvent{ActorID: actorID, Username: username})
}

// --- HELPERS ---

// publish sérialise et injecte le contexte de trace dans les headers NATS,
// pour que le consumer puisse rattacher son span à la requête d'origine.
func (p *NatsPublisher) publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.Debug("📢 Publishing event", "subject", subject)
	return p.nc.PublishMsg(msg)
}

func contentType(post *domain.Post) string {
	switch {
	case post.IsComment():
		return "comment"
	case post.IsRepost():
		return "repost"
	case post.VideoPath != "":
		return "video"
	case post.ImagePath != "":
		return "image"
	default:
		return "post"
	}
}
