package inquiry

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/metrics"
)

// Reevaluator продвигает запросы, ожидавшие верификации, когда пользователь её прошёл.
// Вызывается внутри транзакции администратора, уведомления и метрики - Notify после фиксации.
type Reevaluator struct {
	tx        repository.TxManager
	inquiries repository.InquiryRepository
	users     repository.UserRepository
	notifier  event.Notifier
}

func NewReevaluator(
	tx repository.TxManager,
	inquiries repository.InquiryRepository,
	users repository.UserRepository,
	notifier event.Notifier,
) *Reevaluator {
	return &Reevaluator{tx: tx, inquiries: inquiries, users: users, notifier: notifier}
}

// Advanced - запрос, продвинутый повторной оценкой, и его прежний статус.
type Advanced struct {
	Inquiry *entity.Inquiry
	From    valueobject.InquiryStatus
}

// ReevaluateForUser возвращает запросы, перешедшие в ready_for_admin_connection.
func (r *Reevaluator) ReevaluateForUser(ctx context.Context, userID uuid.UUID) ([]Advanced, error) {
	var advanced []Advanced
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := r.inquiries.LockPendingForUser(ctx, userID)
		if err != nil {
			return err
		}

		for _, inq := range pending {
			buyer, err := r.users.FindForShare(ctx, inq.BuyerID)
			if err != nil {
				return err
			}
			seller, err := r.users.FindForShare(ctx, inq.SellerID)
			if err != nil {
				return err
			}

			prev := inq.Status
			changed, err := inq.Reevaluate(buyer.VerificationStatus, seller.VerificationStatus)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			if err := r.inquiries.UpdateState(ctx, inq, prev); err != nil {
				return err
			}
			advanced = append(advanced, Advanced{Inquiry: inq, From: prev})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return advanced, nil
}

// Notify сообщает сторонам и администраторам о продвинутых запросах.
func (r *Reevaluator) Notify(advanced []Advanced) {
	for _, a := range advanced {
		inq := a.Inquiry
		metrics.InquiryTransition(string(a.From), string(inq.Status))
		data := map[string]any{
			"inquiry_id": inq.ID,
			"listing_id": inq.ListingID,
			"status":     inq.Status,
		}
		r.notifier.NotifyUser(inq.BuyerID, event.InquiryReadyForConnection, data)
		r.notifier.NotifyUser(inq.SellerID, event.InquiryReadyForConnection, data)
		r.notifier.NotifyAdmins(event.InquiryReadyForConnection, data)
	}
}
