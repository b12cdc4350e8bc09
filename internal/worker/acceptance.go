package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"empathic-credit/internal/domain"
	"empathic-credit/internal/notification"
	"empathic-credit/internal/queue"
	"empathic-credit/internal/repository"
)

// AcceptanceWorker materializa ofertas aceptadas en cuentas de credito.
// Creacion de cuenta y cambio de estado de la oferta se confirman como una
// sola transaccion.
type AcceptanceWorker struct {
	logger     *zap.Logger
	creditRepo repository.CreditRepository
	userRepo   repository.UserRepository
	notifier   notification.Sender
	now        func() time.Time
}

func NewAcceptanceWorker(
	logger *zap.Logger,
	creditRepo repository.CreditRepository,
	userRepo repository.UserRepository,
	notifier notification.Sender,
) *AcceptanceWorker {
	return &AcceptanceWorker{
		logger:     logger,
		creditRepo: creditRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Run consume la cola de aceptacion hasta que el contexto se cancele.
// Los fallos de un job se loguean y el loop continua.
func (w *AcceptanceWorker) Run(ctx context.Context, q *queue.RedisQueue) error {
	w.logger.Info("acceptance worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("acceptance worker stopping")
			return ctx.Err()
		default:
		}

		envelope, err := q.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if envelope == nil {
			continue
		}

		if err := w.Dispatch(ctx, envelope); err != nil {
			w.logger.Error("job failed", zap.String("job", envelope.Job), zap.Error(err))
		}
	}
}

// Dispatch enruta un envelope a su handler por nombre de job.
func (w *AcceptanceWorker) Dispatch(ctx context.Context, envelope *queue.Envelope) error {
	switch envelope.Job {
	case queue.JobCreditAcceptance:
		var payload queue.AcceptancePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal acceptance payload: %w", err)
		}
		return w.ProcessAcceptance(ctx, payload)
	default:
		return fmt.Errorf("unknown job %q", envelope.Job)
	}
}

// ProcessAcceptance revalida la oferta y crea la cuenta. Los fallos de
// validacion se loguean y el job se descarta sin reintento; un fallo de
// notificacion si hace fallar el job.
func (w *AcceptanceWorker) ProcessAcceptance(ctx context.Context, payload queue.AcceptancePayload) error {
	logger := w.logger.With(
		zap.String("offer_id", payload.OfferID),
		zap.String("user_id", payload.UserID),
	)
	logger.Info("processing credit acceptance")

	var (
		account domain.CreditAccount
		dropped bool
	)
	err := w.creditRepo.InTx(ctx, func(tx pgx.Tx) error {
		// Releer la oferta con datos frescos: debe existir, pertenecer al
		// usuario y seguir en estado offered.
		offer, err := w.creditRepo.GetOfferForAcceptance(ctx, tx, payload.OfferID, payload.UserID)
		if err != nil {
			return err
		}
		if offer == nil {
			logger.Error("credit offer not found or not in offered status")
			dropped = true
			return nil
		}
		if offer.CreditLimit == nil || offer.APR == nil || offer.CreditType == nil {
			logger.Error("credit offer has no terms")
			dropped = true
			return nil
		}

		// Guardia de carrera: la cuenta pudo crearse despues del accept.
		existing, err := w.creditRepo.GetAccountForUser(ctx, tx, payload.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			logger.Error("user already has an active credit account",
				zap.String("account_id", existing.ID))
			dropped = true
			return nil
		}

		now := w.now().UTC()
		account = domain.CreditAccount{
			ID:              uuid.NewString(),
			UserID:          payload.UserID,
			ActiveLimit:     *offer.CreditLimit,
			APR:             *offer.APR,
			CreditType:      *offer.CreditType,
			CurrentBalance:  0,
			AvailableCredit: *offer.CreditLimit,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := w.creditRepo.CreateAccount(ctx, tx, account); err != nil {
			return err
		}
		return w.creditRepo.UpdateOfferStatus(ctx, tx, payload.OfferID, domain.OfferStatusAccepted)
	})
	if err != nil {
		// El constraint unico de cuenta por usuario puede ganarle a la
		// guardia de arriba; mismo tratamiento que la validacion.
		if repository.IsUniqueViolation(err) {
			logger.Error("credit account already created concurrently", zap.Error(err))
			return nil
		}
		return fmt.Errorf("process credit acceptance: %w", err)
	}
	if dropped {
		return nil
	}

	logger.Info("credit acceptance processed", zap.String("account_id", account.ID))
	return w.notifyAccepted(ctx, payload.UserID, account)
}

// notifyAccepted envia la notificacion multi-canal de cuenta activada.
// Best-effort por canal, pero cualquier fallo se propaga como error del job.
func (w *AcceptanceWorker) notifyAccepted(ctx context.Context, userID string, account domain.CreditAccount) error {
	user, err := w.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user for notification: %w", err)
	}

	subject := "Your credit line is active"
	body := fmt.Sprintf(
		"Your new credit line is ready.\nLimit: %.2f\nAPR: %.2f%%\nType: %s\n",
		account.ActiveLimit,
		account.APR*100,
		account.CreditType,
	)

	results := w.notifier.Notify(ctx, user, subject, body,
		[]notification.Channel{notification.ChannelEmail, notification.ChannelPush})

	var failed []error
	for ch, err := range results {
		if err != nil {
			w.logger.Warn("notification channel failed",
				zap.String("channel", string(ch)), zap.Error(err))
			failed = append(failed, fmt.Errorf("%s: %w", ch, err))
		}
	}
	return errors.Join(failed...)
}
