package cosign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

func OfferTopic(player flow.Address) string {
	return fmt.Sprintf("offers/%s", player.Hex())
}

type Publisher interface {
	Publish(message pubsub.Publishable)
}

type Notifier interface {
	Publish(topic string, event any)
}

type Tracker interface {
	Track(gameId uint64, player flow.Address)
}

// OfferCreated travels over pubsub so that every API instance learns about
// an offer, whichever instance the first player used.
type OfferCreated struct {
	Topic string               `json:"-"`
	Offer model.StartGameOffer `json:"offer"`
}

func (e OfferCreated) GetEventTopicName() string {
	return e.Topic
}

type ServiceOptions struct {
	Offers     *OfferStore
	Publisher  Publisher
	Notifier   Notifier
	Index      secret.GameIndex
	Tracker    Tracker
	OfferTopic string
	Now        func() time.Time
}

type Service struct {
	orchestrator *Orchestrator
	ledger       blockchain.Ledger
	offers       *OfferStore
	publisher    Publisher
	notifier     Notifier
	index        secret.GameIndex
	tracker      Tracker
	offerTopic   string
	now          func() time.Time
}

func NewService(orchestrator *Orchestrator, opts ServiceOptions) *Service {
	s := &Service{
		orchestrator: orchestrator,
		ledger:       orchestrator.ledger,
		offers:       opts.Offers,
		publisher:    opts.Publisher,
		notifier:     opts.Notifier,
		index:        opts.Index,
		tracker:      opts.Tracker,
		offerTopic:   opts.OfferTopic,
		now:          opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Orchestrator() *Orchestrator {
	return s.orchestrator
}

type OfferRequest struct {
	TableId uint64
	BuyIn   int64
	Player2 flow.Address
}

// Offer signs the first player's half of start_game and parks it for the
// second player.
func (s *Service) Offer(ctx context.Context, p1 blockchain.Signer, req OfferRequest) (*model.StartGameOffer, error) {
	sessionId, err := NewSessionId()
	if err != nil {
		return nil, err
	}

	artifact, err := s.orchestrator.Prepare(ctx, StartGame{
		SessionId: sessionId,
		TableId:   req.TableId,
		Player2:   req.Player2,
		BuyIn:     req.BuyIn,
	}, p1)
	if err != nil {
		return nil, err
	}
	parsed, _, err := s.orchestrator.Parse(artifact)
	if err != nil {
		return nil, err
	}

	offer := &model.StartGameOffer{
		Id:            uuid.New().String(),
		SessionId:     sessionId,
		TableId:       req.TableId,
		BuyIn:         req.BuyIn,
		Player1:       p1.Address().Hex(),
		Player2:       req.Player2.Hex(),
		Artifact:      artifact,
		ExpiresLedger: parsed.ExpirationLedger,
		State:         P1AuthSigned.String(),
		TimeCreated:   s.now().UTC(),
	}
	if err := s.offers.Save(ctx, offer); err != nil {
		return nil, err
	}

	if s.publisher != nil && s.offerTopic != "" {
		s.publisher.Publish(OfferCreated{Topic: s.offerTopic, Offer: *offer})
	} else {
		s.notifyOffer(*offer)
	}
	return offer, nil
}

// HandleOfferCreated stores offers announced by other instances. An offer
// whose artifact disagrees with its metadata is dropped.
func (s *Service) HandleOfferCreated(ctx context.Context, event OfferCreated) error {
	offer := event.Offer
	parsed, _, err := s.orchestrator.Parse(offer.Artifact)
	if err != nil {
		return fmt.Errorf("offer %s: %w: %v", offer.Id, pubsub.ErrDrop, err)
	}
	if parsed.SessionId != offer.SessionId || parsed.Player1.Hex() != offer.Player1 {
		return fmt.Errorf("offer %s disagrees with its artifact: %w", offer.Id, pubsub.ErrDrop)
	}

	if err := s.offers.Save(ctx, &offer); err != nil {
		return err
	}
	s.notifyOffer(offer)
	return nil
}

func (s *Service) notifyOffer(offer model.StartGameOffer) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(OfferTopic(flow.HexToAddress(offer.Player2)), map[string]any{
		"type":    "START_GAME_OFFERED",
		"payload": offer,
	})
}

// PendingOffers lists open offers to player2 that can still be accepted.
func (s *Service) PendingOffers(ctx context.Context, player2 flow.Address) ([]model.StartGameOffer, error) {
	latest, err := s.ledger.LatestLedger(ctx)
	if err != nil {
		return nil, err
	}
	return s.offers.Pending(ctx, player2, latest)
}

type AcceptRequest struct {
	OfferId  string
	Artifact string
}

// Accept assembles and submits start_game for the second player, from a
// stored offer or from an artifact received out of band.
func (s *Service) Accept(ctx context.Context, p2 blockchain.Signer, req AcceptRequest) (uint64, error) {
	artifact := req.Artifact
	if req.OfferId != "" {
		offer, err := s.offers.Find(ctx, req.OfferId)
		if err != nil {
			return 0, err
		}
		if offer.Player2 != p2.Address().Hex() || offer.TimeAccepted != nil {
			return 0, ErrOfferNotFound
		}
		artifact = offer.Artifact
	}

	parsed, _, err := s.orchestrator.Parse(artifact)
	if err != nil {
		return 0, err
	}

	tx, err := s.orchestrator.Inject(ctx, artifact, p2)
	if err != nil {
		return 0, err
	}
	gameId, err := s.orchestrator.Finalize(ctx, tx, p2)
	if err != nil {
		return 0, err
	}

	if req.OfferId != "" {
		if err := s.offers.MarkSubmitted(ctx, req.OfferId, s.now().UTC()); err != nil {
			log.Warn().Err(err).Str("offerId", req.OfferId).Msg("Could not mark offer submitted")
		}
	}
	s.remember(ctx, gameId, parsed.Player1, p2.Address())

	if s.notifier != nil {
		s.notifier.Publish(OfferTopic(parsed.Player1), map[string]any{
			"type": "START_GAME_ACCEPTED",
			"payload": map[string]any{
				"offerId": req.OfferId,
				"gameId":  gameId,
			},
		})
	}
	return gameId, nil
}

func (s *Service) remember(ctx context.Context, gameId uint64, players ...flow.Address) {
	for _, player := range players {
		if s.index != nil {
			if err := s.index.Set(ctx, player, gameId); err != nil {
				log.Warn().Err(err).Uint64("gameId", gameId).Str("player", player.Hex()).Msg("Could not remember game")
			}
		}
		if s.tracker != nil {
			s.tracker.Track(gameId, player)
		}
	}
}
