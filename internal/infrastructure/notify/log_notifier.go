package notify

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/pkg/logger"
	"github.com/rs/zerolog"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier escribe las notificaciones en el log estructurado con el nivel equivalente.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg ports.Notification) {
	var ev *zerolog.Event
	switch msg.Level {
	case ports.NotifyError:
		ev = n.log.Error()
	case ports.NotifyWarning:
		ev = n.log.Warn()
	default:
		ev = n.log.Info()
	}
	ev.Str("notification", string(msg.Level)).
		Str("business_id", msg.BusinessID).
		Str("reference", msg.Reference).
		Msg(msg.Message)
}

// Fanout reparte cada notificación entre varios sinks.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, msg ports.Notification) {
	for _, n := range f {
		n.Notify(ctx, msg)
	}
}
