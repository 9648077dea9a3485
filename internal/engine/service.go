package engine

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/lariod12/meosjourney-sub000/internal/backoff"
	"github.com/lariod12/meosjourney-sub000/internal/notify"
	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

// BlobStore is the image collaborator. Deletes are best-effort: the engine
// logs failures and moves on.
type BlobStore interface {
	Delete(ref string) error
}

type Service struct {
	db            *sql.DB
	profiles      *storage.ProfileRepo
	tasks         *storage.TaskRepo
	confirmations *storage.ConfirmationRepo
	journal       *storage.JournalRepo
	blobs         BlobStore
	sink          notify.Sink
	logger        *zap.Logger

	autoApprove bool
	growMaxXP   bool
	locales     []string
	loc         *time.Location
	now         func() time.Time
}

type Options struct {
	// AutoApprove resolves new submissions without admin review.
	AutoApprove bool
	// GrowMaxXP selects the growing-bar leveling variant.
	GrowMaxXP bool
	// Locales that localized task fields must carry; the first is the
	// primary locale used for confirmation ids and journal text.
	Locales []string
	// Timezone for calendar-day comparisons. Defaults to UTC.
	Timezone *time.Location

	Blobs  BlobStore
	Sink   notify.Sink
	Logger *zap.Logger

	// Now overrides the clock; tests use it to submit "tomorrow".
	Now func() time.Time
}

func NewService(db *sql.DB, opts Options) *Service {
	if len(opts.Locales) == 0 {
		opts.Locales = []string{"en"}
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	if opts.Blobs == nil {
		opts.Blobs = nopBlobStore{}
	}
	if opts.Sink == nil {
		opts.Sink = notify.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		db:            db,
		profiles:      storage.NewProfileRepo(db),
		tasks:         storage.NewTaskRepo(db),
		confirmations: storage.NewConfirmationRepo(db),
		journal:       storage.NewJournalRepo(db),
		blobs:         opts.Blobs,
		sink:          opts.Sink,
		logger:        opts.Logger,
		autoApprove:   opts.AutoApprove,
		growMaxXP:     opts.GrowMaxXP,
		locales:       opts.Locales,
		loc:           opts.Timezone,
		now:           opts.Now,
	}
}

func (s *Service) ProfileRepo() *storage.ProfileRepo           { return s.profiles }
func (s *Service) TaskRepo() *storage.TaskRepo                 { return s.tasks }
func (s *Service) ConfirmationRepo() *storage.ConfirmationRepo { return s.confirmations }
func (s *Service) JournalRepo() *storage.JournalRepo           { return s.journal }

// primaryTitle picks the title in the primary locale, falling back to any
// locale that is present.
func (s *Service) primaryTitle(t *storage.Task) string {
	if v, ok := t.Title[s.locales[0]]; ok && v != "" {
		return v
	}
	for _, loc := range s.locales[1:] {
		if v, ok := t.Title[loc]; ok && v != "" {
			return v
		}
	}
	for _, v := range t.Title {
		if v != "" {
			return v
		}
	}
	return ""
}

// retry shields store writes from transient backend throttling.
func (s *Service) retry(ctx context.Context, fn func() error) error {
	return backoff.Retry(ctx, backoff.DefaultAttempts, backoff.DefaultInitial, fn)
}

// AddXP advances the singleton profile ledger and persists the result.
func (s *Service) AddXP(ctx context.Context, amount int) (*ProgressionSummary, error) {
	if amount < 0 {
		return nil, ValidationError{Field: "amount", Reason: "must be >= 0"}
	}

	p, err := s.profiles.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}

	updated, sum := Advance(*p, amount, s.growMaxXP)
	if err := s.retry(ctx, func() error { return s.profiles.Update(ctx, &updated) }); err != nil {
		return nil, err
	}

	if sum.LeveledUp {
		s.sink.Notify(ctx, "profile.levelup", map[string]any{
			"level":   sum.NewLevel,
			"from":    sum.OldLevel,
			"max_xp":  sum.MaxXP,
			"current": sum.NewXP,
		})
	}
	return &sum, nil
}

type nopBlobStore struct{}

func (nopBlobStore) Delete(string) error { return nil }
