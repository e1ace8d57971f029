// Package natsnotice publishes user-facing notices to NATS so a notification
// gateway can fan them out to connected clients.
package natsnotice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

const DefaultSubject = "clubportal.notices"

// MsgPublisher is the subset of *nats.Conn the publisher needs.
type MsgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher implements noticesink.Sink on top of a NATS connection.
type Publisher struct {
	conn    MsgPublisher
	subject string
	log     logger.Logger
}

func NewPublisher(conn MsgPublisher, subject string, log logger.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{conn: conn, subject: subject, log: log.Named("natsnotice")}
}

type noticeEvent struct {
	UserID      string    `json:"user_id"`
	ClubID      string    `json:"club_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subject returns the per-user subject a notice is published on.
func (p *Publisher) Subject(n noticesink.Notice) string {
	return p.subject + "." + string(n.UserID)
}

func (p *Publisher) Notify(ctx context.Context, n noticesink.Notice) error {
	if p.conn == nil {
		return errors.New("nil nats connection")
	}
	data, err := json.Marshal(noticeEvent{
		UserID:      string(n.UserID),
		ClubID:      string(n.ClubID),
		Title:       n.Title,
		Description: n.Description,
		Variant:     string(n.Variant),
		CreatedAt:   n.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.Subject(n),
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	p.log.Debug(ctx, "publishing notice", logger.String("subject", msg.Subject), logger.String("variant", string(n.Variant)))
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}
