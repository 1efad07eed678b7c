package redis

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

var _ ports.Notifier = (*Notifier)(nil)

// Notifier publica las notificaciones como JSON en un canal pub/sub para que el cliente las muestre.
// Los errores de publicación solo se registran.
type Notifier struct {
	client  goredis.UniversalClient
	channel string
	log     *logger.Logger
}

func NewNotifier(client goredis.UniversalClient, channel string, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{client: client, channel: channel, log: log}
}

func (n *Notifier) Notify(ctx context.Context, msg ports.Notification) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.log.Warn().Err(err).Msg("no se pudo serializar la notificación")
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.log.Warn().Err(err).Str("channel", n.channel).Msg("no se pudo publicar la notificación")
	}
}

// Client construye el cliente a partir de la dirección; el llamador lo cierra.
func Client(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
