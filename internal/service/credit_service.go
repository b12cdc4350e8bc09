package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"empathic-credit/internal/domain"
	"empathic-credit/internal/queue"
	"empathic-credit/internal/repository"
	"empathic-credit/internal/risk"
)

// CreditConfig agrupa las ventanas de validez y lookback del pipeline.
type CreditConfig struct {
	RiskAssessmentTTL   time.Duration
	OfferTTL            time.Duration
	TransactionLookback time.Duration
	TransactionLimit    int
	EmotionLookback     time.Duration
	EmotionLimit        int
}

// CreditService orquesta la decision de credito: invariantes de ciclo de
// vida, feature engineering, scoring y persistencia atomica de la oferta.
type CreditService struct {
	logger       *zap.Logger
	creditRepo   repository.CreditRepository
	txnRepo      repository.TransactionRepository
	emotionRepo  repository.EmotionalEventRepository
	scorer       risk.Scorer
	queue        queue.Enqueuer
	aggregator   FeatureAggregator
	calculator   OfferCalculator
	cfg          CreditConfig
	now          func() time.Time
}

func NewCreditService(
	logger *zap.Logger,
	creditRepo repository.CreditRepository,
	txnRepo repository.TransactionRepository,
	emotionRepo repository.EmotionalEventRepository,
	scorer risk.Scorer,
	enqueuer queue.Enqueuer,
	cfg CreditConfig,
) *CreditService {
	return &CreditService{
		logger:      logger,
		creditRepo:  creditRepo,
		txnRepo:     txnRepo,
		emotionRepo: emotionRepo,
		scorer:      scorer,
		queue:       enqueuer,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ApplyForCreditLine evalua una solicitud de linea de credito y devuelve la
// oferta persistida. Assessment y oferta se escriben como una unica unidad
// atomica.
func (s *CreditService) ApplyForCreditLine(ctx context.Context, userID string) (domain.CreditOffer, error) {
	logger := s.logger.With(zap.String("user_id", userID))

	// Una cuenta activa bloquea nuevas solicitudes. Decision de
	// simplificacion del negocio, no refleja credito multilinea real.
	account, err := s.creditRepo.GetAccountForUser(ctx, nil, userID)
	if err != nil {
		return domain.CreditOffer{}, err
	}
	if account != nil {
		return domain.CreditOffer{}, ErrAccountExists
	}

	// Si ya hay una oferta activa, se devuelve esa misma.
	activeOffer, err := s.creditRepo.GetActiveOfferForUser(ctx, nil, userID)
	if err != nil {
		return domain.CreditOffer{}, err
	}
	if activeOffer != nil {
		logger.Debug("user has an active credit offer", zap.String("offer_id", activeOffer.ID))
		return domain.CreditOffer{}, &ActiveOfferError{Offer: *activeOffer}
	}

	now := s.now().UTC()

	logger.Debug("retrieving data for credit line analysis")
	transactions, err := s.txnRepo.GetRecent(ctx, userID, now.Add(-s.cfg.TransactionLookback), s.cfg.TransactionLimit)
	if err != nil {
		return domain.CreditOffer{}, err
	}
	events, err := s.emotionRepo.GetRecent(ctx, userID, now.Add(-s.cfg.EmotionLookback), s.cfg.EmotionLimit)
	if err != nil {
		return domain.CreditOffer{}, err
	}

	logger.Debug("creating features from user data",
		zap.Int("transactions", len(transactions)),
		zap.Int("emotional_events", len(events)),
	)
	features := s.aggregator.CreateFeatures(transactions, events)

	var offer domain.CreditOffer
	err = s.creditRepo.InTx(ctx, func(tx pgx.Tx) error {
		assessment, err := s.resolveRiskAssessment(ctx, tx, userID, features, now, logger)
		if err != nil {
			return err
		}

		logger.Debug("calculating credit offer", zap.Float64("risk_score", assessment.RiskScore))
		terms, err := s.calculator.CalculateOffer(assessment.RiskScore, features)
		if err != nil {
			return err
		}

		offer = domain.CreditOffer{
			ID:               uuid.NewString(),
			UserID:           userID,
			RiskAssessmentID: assessment.ID,
			Status:           terms.Status,
			CreditType:       terms.CreditType,
			CreditLimit:      terms.CreditLimit,
			APR:              terms.APR,
			CreatedAt:        now,
			ExpiresAt:        now.Add(s.cfg.OfferTTL),
		}
		return s.creditRepo.CreateOffer(ctx, tx, offer)
	})
	if err != nil {
		// El indice parcial unico es el arbitro final de la carrera entre
		// applies concurrentes: el perdedor recupera la oferta ganadora.
		if repository.IsUniqueViolation(err) {
			winner, ferr := s.creditRepo.GetActiveOfferForUser(ctx, nil, userID)
			if ferr == nil && winner != nil {
				return domain.CreditOffer{}, &ActiveOfferError{Offer: *winner}
			}
		}
		return domain.CreditOffer{}, err
	}

	logger.Info("credit offer created",
		zap.String("offer_id", offer.ID),
		zap.String("status", string(offer.Status)),
	)
	return offer, nil
}

// resolveRiskAssessment reutiliza un assessment vigente o llama al modelo y
// persiste uno nuevo dentro de la transaccion en curso.
func (s *CreditService) resolveRiskAssessment(ctx context.Context, tx pgx.Tx, userID string, features domain.FeatureVector, now time.Time, logger *zap.Logger) (domain.RiskAssessment, error) {
	existing, err := s.creditRepo.GetValidRiskAssessment(ctx, tx, userID)
	if err != nil {
		return domain.RiskAssessment{}, err
	}
	if existing != nil {
		logger.Debug("reusing valid risk assessment", zap.String("risk_assessment_id", existing.ID))
		return *existing, nil
	}

	logger.Debug("requesting prediction from risk model")
	score, err := s.scorer.Predict(ctx, features)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk model predict: %w", err)
	}
	if score < 0 || score > 1 {
		return domain.RiskAssessment{}, fmt.Errorf("risk score %f outside [0,1]", score)
	}

	assessment := domain.RiskAssessment{
		ID:        uuid.NewString(),
		UserID:    userID,
		RiskScore: math.Round(score*10000) / 10000,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RiskAssessmentTTL),
	}
	if err := s.creditRepo.CreateRiskAssessment(ctx, tx, assessment, features); err != nil {
		return domain.RiskAssessment{}, err
	}
	logger.Debug("risk assessment created", zap.String("risk_assessment_id", assessment.ID))
	return assessment, nil
}

// AcceptCreditOffer valida invariantes de forma sincronica y delega la
// materializacion de la cuenta a un job asincronico. Devuelve un token de
// seguimiento generado localmente: no es el id del job y no es consultable.
func (s *CreditService) AcceptCreditOffer(ctx context.Context, offerID, userID string) (string, error) {
	logger := s.logger.With(zap.String("user_id", userID), zap.String("offer_id", offerID))

	// Re-chequeo del invariante de cuenta: una carrera pudo crearla entre
	// apply y accept.
	account, err := s.creditRepo.GetAccountForUser(ctx, nil, userID)
	if err != nil {
		return "", err
	}
	if account != nil {
		return "", ErrAccountExists
	}

	// Siempre se consulta por user_id, nunca por offer_id: evita que un
	// usuario resuelva ofertas ajenas.
	offer, err := s.creditRepo.GetActiveOfferForUser(ctx, nil, userID)
	if err != nil {
		return "", err
	}
	if offer == nil {
		return "", ErrNoActiveOffer
	}

	// Segunda linea de defensa: el id provisto debe coincidir con la unica
	// oferta activa del usuario.
	if offer.ID != offerID {
		return "", ErrOfferMismatch
	}

	if s.now().UTC().After(offer.ExpiresAt) {
		return "", ErrOfferExpired
	}

	if err := s.queue.Enqueue(ctx, queue.JobCreditAcceptance, queue.AcceptancePayload{
		OfferID: offerID,
		UserID:  userID,
	}); err != nil {
		return "", fmt.Errorf("enqueue acceptance job: %w", err)
	}

	trackingToken := uuid.NewString()
	logger.Info("credit acceptance enqueued", zap.String("tracking_token", trackingToken))
	return trackingToken, nil
}
