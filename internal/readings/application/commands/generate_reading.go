// Package commands holds the write-side handlers for readings.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
	deck "github.com/Gzeu/tarot-reading-app/internal/deck/domain"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	sharedApplication "github.com/Gzeu/tarot-reading-app/internal/shared/application"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/cache"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
)

// ErrNotOwner is returned when a user addresses another user's reading.
var ErrNotOwner = errors.New("user does not own this reading")

// DailyCardSpreadID is the one spread pinned to one reading per calendar day.
const DailyCardSpreadID = "daily-card"

// Interpreter produces interpretation prose for a reading. Optional; when
// absent or failing, the interpretation stays empty and clients fall back
// to static card meanings.
type Interpreter interface {
	Interpret(ctx context.Context, spread deck.Spread, cards []deck.Card, reversed []bool, question string) (string, error)
}

// GenerateReadingCommand contains the data needed to generate a reading.
type GenerateReadingCommand struct {
	UserID   uuid.UUID
	SpreadID string
	Question string
}

// GenerateReadingResult contains the generated reading.
type GenerateReadingResult struct {
	ReadingID uuid.UUID
	SpreadID  string
	CardIDs   []int
	Reversed  []bool
	Positions []string
	CreatedAt time.Time
	Streak    int
	Existing  bool // true when the daily card was already drawn today
}

// GenerateReadingHandler handles the GenerateReadingCommand.
type GenerateReadingHandler struct {
	userRepo    identityDomain.UserRepository
	readingRepo domain.ReadingRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	interpreter Interpreter
	dailyCache  cache.Cache
	logger      *slog.Logger

	newSource func() domain.RandSource
	clock     func() time.Time
	location  *time.Location
}

// NewGenerateReadingHandler creates a new GenerateReadingHandler.
func NewGenerateReadingHandler(
	userRepo identityDomain.UserRepository,
	readingRepo domain.ReadingRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *GenerateReadingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateReadingHandler{
		userRepo:    userRepo,
		readingRepo: readingRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		logger:      logger,
		newSource: func() domain.RandSource {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		clock:    time.Now,
		location: time.UTC,
	}
}

// WithInterpreter attaches the optional interpretation collaborator.
func (h *GenerateReadingHandler) WithInterpreter(i Interpreter) *GenerateReadingHandler {
	h.interpreter = i
	return h
}

// WithDailyCache attaches an optional cache for the daily card pin. Cache
// misses and write failures fall through to the database.
func (h *GenerateReadingHandler) WithDailyCache(c cache.Cache) *GenerateReadingHandler {
	h.dailyCache = c
	return h
}

// WithRandSource overrides the randomness source factory. Used by tests and
// the CLI's seeded draws.
func (h *GenerateReadingHandler) WithRandSource(fn func() domain.RandSource) *GenerateReadingHandler {
	h.newSource = fn
	return h
}

// WithClock overrides wall-clock time for tests.
func (h *GenerateReadingHandler) WithClock(clock func() time.Time) *GenerateReadingHandler {
	h.clock = clock
	return h
}

// WithLocation sets the reference location for calendar computations.
func (h *GenerateReadingHandler) WithLocation(loc *time.Location) *GenerateReadingHandler {
	if loc != nil {
		h.location = loc
	}
	return h
}

// Handle executes the GenerateReadingCommand: entitlement check, draw, save
// and usage bookkeeping in one transaction.
func (h *GenerateReadingHandler) Handle(ctx context.Context, cmd GenerateReadingCommand) (*GenerateReadingResult, error) {
	spread, err := catalog.GetSpread(cmd.SpreadID)
	if err != nil {
		return nil, err
	}

	now := h.clock()
	readingDate := now.In(h.location).Format("2006-01-02")

	if spread.ID == DailyCardSpreadID {
		if cached := h.cachedDaily(ctx, cmd.UserID, readingDate); cached != nil {
			return cached, nil
		}
	}

	var result *GenerateReadingResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		// Row lock serializes the quota check with the usage increment.
		user, err := h.userRepo.FindByIDForUpdate(txCtx, cmd.UserID)
		if err != nil {
			return err
		}

		// The daily card is pinned: a second request on the same calendar
		// day returns the existing reading without consuming quota.
		if spread.ID == DailyCardSpreadID {
			existing, err := h.readingRepo.FindDailyByUserDate(txCtx, cmd.UserID, spread.ID, readingDate)
			if err == nil {
				result = resultFrom(existing, spread, user.ReadingStreak(), true)
				return nil
			}
			if !errors.Is(err, domain.ErrReadingNotFound) {
				return err
			}
		}

		if err := user.CanGenerateReading(now, h.location); err != nil {
			return err
		}

		draw, err := domain.DrawCards(spread, h.newSource())
		if err != nil {
			return err
		}

		reading, err := domain.NewReading(cmd.UserID, spread, cmd.Question, draw, readingDate)
		if err != nil {
			return err
		}

		h.interpret(txCtx, reading, spread, draw)

		if err := h.readingRepo.Save(txCtx, reading); err != nil {
			return err
		}

		user.RecordReading(now, h.location)
		if err := h.userRepo.Save(txCtx, user); err != nil {
			return err
		}

		events := reading.DomainEvents()
		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}
		reading.ClearDomainEvents()

		result = resultFrom(reading, spread, user.ReadingStreak(), false)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if spread.ID == DailyCardSpreadID {
		h.cacheDaily(ctx, cmd.UserID, readingDate, now, result)
	}

	return result, nil
}

// cachedDaily returns the pinned daily reading from the cache, or nil on
// any miss or error.
func (h *GenerateReadingHandler) cachedDaily(ctx context.Context, userID uuid.UUID, readingDate string) *GenerateReadingResult {
	if h.dailyCache == nil {
		return nil
	}

	data, err := h.dailyCache.Get(ctx, dailyCacheKey(userID, readingDate))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			h.logger.Warn("daily card cache read failed", "user_id", userID, "error", err)
		}
		return nil
	}

	var result GenerateReadingResult
	if err := json.Unmarshal(data, &result); err != nil {
		h.logger.Warn("daily card cache entry corrupt", "user_id", userID, "error", err)
		return nil
	}
	result.Existing = true
	return &result
}

// cacheDaily pins today's reading until local midnight. Best effort.
func (h *GenerateReadingHandler) cacheDaily(ctx context.Context, userID uuid.UUID, readingDate string, now time.Time, result *GenerateReadingResult) {
	if h.dailyCache == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	local := now.In(h.location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, h.location).AddDate(0, 0, 1)
	if err := h.dailyCache.Set(ctx, dailyCacheKey(userID, readingDate), data, midnight.Sub(local)); err != nil {
		h.logger.Warn("daily card cache write failed", "user_id", userID, "error", err)
	}
}

func dailyCacheKey(userID uuid.UUID, readingDate string) string {
	return "daily:" + userID.String() + ":" + readingDate
}

// interpret attaches prose from the optional collaborator. Failures are
// logged and the reading proceeds without interpretation.
func (h *GenerateReadingHandler) interpret(ctx context.Context, reading *domain.Reading, spread deck.Spread, draw domain.Draw) {
	if h.interpreter == nil {
		return
	}

	cards := make([]deck.Card, len(draw.CardIDs))
	for i, id := range draw.CardIDs {
		card, err := catalog.GetCard(id)
		if err != nil {
			h.logger.Warn("drawn card missing from catalog", "card_id", id, "error", err)
			return
		}
		cards[i] = card
	}

	text, err := h.interpreter.Interpret(ctx, spread, cards, draw.Reversed, reading.Question())
	if err != nil {
		h.logger.Warn("interpretation failed, continuing without",
			"reading_id", reading.ID(),
			"error", err,
		)
		return
	}
	reading.SetInterpretation(text)
}

func resultFrom(reading *domain.Reading, spread deck.Spread, streak int, existing bool) *GenerateReadingResult {
	return &GenerateReadingResult{
		ReadingID: reading.ID(),
		SpreadID:  spread.ID,
		CardIDs:   reading.CardIDs(),
		Reversed:  reading.Reversed(),
		Positions: spread.Positions,
		CreatedAt: reading.CreatedAt(),
		Streak:    streak,
		Existing:  existing,
	}
}
