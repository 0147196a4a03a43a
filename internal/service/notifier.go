package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nobridge/nobridge-backend/internal/goroutine"
	"github.com/nobridge/nobridge-backend/internal/metrics"
)

// Broadcaster доставляет событие пользователю (ws.Hub).
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// AdminDirectory возвращает получателей административных событий.
type AdminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Notifier отправляет события после фиксации транзакции. Ошибки доставки
// только логируются: операция, породившая событие, уже выполнена.
type Notifier struct {
	hub     Broadcaster
	admins  AdminDirectory
	log     logrus.FieldLogger
	timeout time.Duration
}

func NewNotifier(hub Broadcaster, admins AdminDirectory, log logrus.FieldLogger) *Notifier {
	return &Notifier{hub: hub, admins: admins, log: log, timeout: 5 * time.Second}
}

func (n *Notifier) NotifyUser(userID uuid.UUID, name string, data any) {
	goroutine.SafeGo(func() {
		n.deliver(userID, name, data)
	})
}

func (n *Notifier) NotifyAdmins(name string, data any) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		ids, err := n.admins.ListAdminIDs(ctx)
		if err != nil {
			metrics.NotificationFailures.Inc()
			n.log.WithError(err).WithField("event", name).Warn("не удалось получить список администраторов")
			return
		}
		for _, id := range ids {
			n.deliver(id, name, data)
		}
	})
}

func (n *Notifier) deliver(userID uuid.UUID, name string, data any) {
	if err := n.hub.BroadcastToUser(userID, name, data); err != nil {
		metrics.NotificationFailures.Inc()
		n.log.WithError(err).WithFields(logrus.Fields{
			"event":   name,
			"user_id": userID,
		}).Warn("не удалось доставить уведомление")
	}
}
