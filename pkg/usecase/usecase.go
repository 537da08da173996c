package usecase

import (
	"time"

	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/service/cork"
	"github.com/secmon-lab/lmx/pkg/service/itglue"
	"github.com/secmon-lab/lmx/pkg/utils/metrics"
)

type UseCases struct {
	repo         interfaces.Repository
	presentation *model.Presentation
	cork         cork.Service
	itglue       itglue.Service
	notifier     interfaces.Notifier
	metrics      *metrics.Metrics
	now          func() time.Time

	Assessment *AssessmentUseCase
	QBR        *QBRUseCase
	Refresh    *RefreshUseCase
}

type Option func(*UseCases)

// WithPresentation replaces the built-in card display rules
func WithPresentation(p *model.Presentation) Option {
	return func(uc *UseCases) {
		uc.presentation = p
	}
}

// WithCork enables Cork refresh. Without it Cork operations fail with
// ErrVendorNotConfigured.
func WithCork(svc cork.Service) Option {
	return func(uc *UseCases) {
		uc.cork = svc
	}
}

// WithITGlue enables IT Glue refresh
func WithITGlue(svc itglue.Service) Option {
	return func(uc *UseCases) {
		uc.itglue = svc
	}
}

func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithClock overrides time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		presentation: model.DefaultPresentation(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Assessment = NewAssessmentUseCase(repo, uc.presentation, uc.metrics, uc.now)
	uc.QBR = NewQBRUseCase(repo, uc.presentation, uc.now)
	uc.Refresh = NewRefreshUseCase(repo, RefreshDeps{
		Cork:     uc.cork,
		ITGlue:   uc.itglue,
		Notifier: uc.notifier,
		Metrics:  uc.metrics,
		Now:      uc.now,
	})

	return uc
}
