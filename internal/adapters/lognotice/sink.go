// Package lognotice is the notice sink used when no broker is configured: it
// writes every notice to the structured log.
package lognotice

import (
	"context"

	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

type Sink struct {
	log logger.Logger
}

func NewSink(log logger.Logger) *Sink {
	if log == nil {
		log = logger.Nop()
	}
	return &Sink{log: log.Named("notice")}
}

func (s *Sink) Notify(ctx context.Context, n noticesink.Notice) error {
	fields := []logger.Field{
		logger.String("user_id", string(n.UserID)),
		logger.String("club_id", string(n.ClubID)),
		logger.String("title", n.Title),
		logger.String("description", n.Description),
	}
	if n.Variant == noticesink.VariantDestructive {
		s.log.Warn(ctx, "notice", fields...)
		return nil
	}
	s.log.Info(ctx, "notice", fields...)
	return nil
}
