package enhancement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/observability"
	"catalogstudio/internal/rules"
	"catalogstudio/internal/validation"
)

const (
	enhanceFailedMessage = "Failed to enhance product content. Please try again."
	missingRemarks       = "missing"
)

// Summary statuses.
const (
	StatusAccepted   = "Accepted"
	StatusNotChanged = "Not Changed"
	StatusDeclined   = "Declined"
	StatusSkipped    = "Skipped"
	StatusPending    = "Pending"
)

// TextValidator judges generated content.
type TextValidator interface {
	ValidateText(ctx context.Context, field domain.FieldConfig, content, lang string) domain.ValidationResult
}

// ProductStore loads working copies and commits confirmed sessions.
type ProductStore interface {
	GetProductData(ctx context.Context, code string) (domain.Product, error)
	Update(ctx context.Context, productID string, updated, original domain.Product, changedFields []string, lang string) error
}

type WizardOptions struct {
	Service      *Service
	Validator    TextValidator
	Fields       domain.FieldSource
	Products     ProductStore
	Goldstandard domain.GoldstandardRepository
	Sessions     SessionStore
	Guard        Guard
	Metrics      *observability.Metrics
	Logger       *zerolog.Logger
	Now          func() time.Time
}

// Wizard drives per-product review sessions field by field.
type Wizard struct {
	service      *Service
	validator    TextValidator
	fields       domain.FieldSource
	products     ProductStore
	goldstandard domain.GoldstandardRepository
	sessions     SessionStore
	guard        Guard
	metrics      *observability.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

func NewWizard(opts WizardOptions) *Wizard {
	w := &Wizard{
		service:      opts.Service,
		validator:    opts.Validator,
		fields:       opts.Fields,
		products:     opts.Products,
		goldstandard: opts.Goldstandard,
		sessions:     opts.Sessions,
		guard:        opts.Guard,
		metrics:      opts.Metrics,
		logger:       zerolog.Nop(),
		now:          opts.Now,
	}
	if opts.Logger != nil {
		w.logger = *opts.Logger
	}
	if w.sessions == nil {
		w.sessions = NewMemoryStore()
	}
	if w.guard == nil {
		w.guard = NewMemoryGuard(DefaultGuardTTL)
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Start opens a session over fieldNames of the product with code.
func (w *Wizard) Start(ctx context.Context, code string, fieldNames []string, lang string, actor *domain.Actor) (Session, error) {
	if len(fieldNames) == 0 {
		return Session{}, fmt.Errorf("%w: no fields selected", domain.ErrInvalidField)
	}
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	product, err := w.products.GetProductData(ctx, code)
	if err != nil {
		return Session{}, fmt.Errorf("load product %s: %w", code, err)
	}
	now := w.now()
	s := &Session{
		ID:          uuid.NewString(),
		ProductCode: code,
		Fields:      append([]string(nil), fieldNames...),
		Language:    lang,
		States:      map[string]FieldState{},
		Original:    product,
		Working:     product.Clone(),
		Actor:       actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.refreshPhase()
	if err := w.sessions.Create(ctx, s); err != nil {
		return Session{}, err
	}
	w.metrics.SetActiveSessions(w.sessions.Len())
	w.logger.Info().Str("session", s.ID).Str("product", code).Strs("fields", fieldNames).Str("language", lang).Msg("enhancement: session started")
	return s.Clone(), nil
}

// Get returns a snapshot of the session.
func (w *Wizard) Get(ctx context.Context, id string) (Session, error) {
	return w.sessions.Get(ctx, id)
}

// Close forgets the session.
func (w *Wizard) Close(ctx context.Context, id string) error {
	err := w.sessions.Delete(ctx, id)
	w.metrics.SetActiveSessions(w.sessions.Len())
	return err
}

// run identifies one enhancement attempt. Results of a run are dropped once
// the session epoch or the field's attempt counter moved on.
type run struct {
	sessionID string
	field     string
	epoch     int
	attempt   int
	lang      string
	product   domain.Product
	actor     *domain.Actor
}

// EnhanceCurrent rates the current field and, unless it is good enough
// already, rewrites it. A second call for a field that is still in flight
// returns the current snapshot unless force is set.
func (w *Wizard) EnhanceCurrent(ctx context.Context, id string, force bool) (Session, error) {
	snap, err := w.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if snap.Confirmed || snap.ShowSummary {
		return snap, fmt.Errorf("%w: session is not reviewing a field", domain.ErrInvalidTransition)
	}
	field := snap.CurrentField()

	key := GuardKey(id, field)
	owned, err := w.guard.Acquire(ctx, key)
	if err != nil {
		w.logger.Warn().Err(err).Str("key", key).Msg("enhancement: guard unavailable, continuing")
		owned = true
	}
	if !owned && !force {
		return snap, nil
	}
	if owned {
		defer func() {
			if err := w.guard.Release(context.WithoutCancel(ctx), key); err != nil {
				w.logger.Warn().Err(err).Str("key", key).Msg("enhancement: guard release failed")
			}
		}()
	}

	var r run
	_, err = w.sessions.Update(ctx, id, func(s *Session) error {
		if s.Confirmed || s.ShowSummary || s.CurrentField() != field || s.Epoch != snap.Epoch {
			return fmt.Errorf("%w: session moved on", domain.ErrInvalidTransition)
		}
		prev := s.States[field]
		s.States[field] = FieldState{Phase: PhaseEvaluatingQuality, IsLoading: true, attempt: prev.attempt + 1}
		s.UpdatedAt = w.now()
		r = run{
			sessionID: id,
			field:     field,
			epoch:     s.Epoch,
			attempt:   prev.attempt + 1,
			lang:      s.Language,
			product:   s.Working.Clone(),
			actor:     s.Actor,
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return w.process(ctx, r, force)
}

func (w *Wizard) process(ctx context.Context, r run, force bool) (Session, error) {
	cfg, err := w.fieldConfig(ctx, r.field, r.product.CategoryName)
	if err != nil {
		msg := enhanceFailedMessage
		if errors.Is(err, domain.ErrNotFound) {
			msg = fmt.Sprintf("No field configuration found for %q in the %q category", r.field, r.product.CategoryName)
		}
		w.metrics.RecordWizardOutcome("error")
		return w.finish(ctx, r, func(st *FieldState) {
			st.Phase = PhaseEnhancing
			st.Error = msg
		})
	}

	content := r.product.Text(r.field)
	quality := domain.Quality{Rating: 0, Remarks: missingRemarks}
	if !IsGenerate(content) {
		quality = w.service.EvaluateQuality(ctx, cfg, content, r.lang, r.product, r.actor)
	}

	threshold := cfg.Threshold()
	if !force && quality.Rating >= threshold && !IsGenerate(content) {
		check := validation.CheckRules(rules.Resolve(cfg, r.lang), content)
		return w.finish(ctx, r, func(st *FieldState) {
			st.Phase = PhaseSkipped
			st.Quality = &quality
			st.Threshold = threshold
			st.Validation = &check
			st.Skipped = true
		})
	}

	if snap, err := w.step(ctx, r, func(st *FieldState) {
		st.Phase = PhaseEnhancing
		st.Quality = &quality
		st.Threshold = threshold
	}); err != nil {
		if errors.Is(err, errStaleRun) {
			return snap, nil
		}
		return Session{}, err
	}

	enh, err := w.service.Enhance(ctx, cfg, content, r.lang, r.product, r.actor)
	if err != nil {
		w.logger.Warn().Err(err).Str("session", r.sessionID).Str("field", r.field).Msg("enhancement: generation failed")
		w.metrics.RecordWizardOutcome("error")
		return w.finish(ctx, r, func(st *FieldState) {
			st.Phase = PhaseEnhancing
			st.Error = enhanceFailedMessage
		})
	}

	var check domain.ValidationResult
	if w.validator != nil {
		check = w.validator.ValidateText(ctx, cfg, enh.Value, r.lang)
	} else {
		check = validation.CheckRules(rules.Resolve(cfg, r.lang), enh.Value)
	}
	value := enh.Value
	return w.finish(ctx, r, func(st *FieldState) {
		st.Phase = PhaseAwaitingDecision
		st.Enhanced = &value
		st.Validation = &check
		st.Prompt = enh.Prompt
	})
}

// fieldConfig picks the active config for name that applies to category,
// preferring category-specific ones.
func (w *Wizard) fieldConfig(ctx context.Context, name, category string) (domain.FieldConfig, error) {
	if w.fields == nil {
		return domain.FieldConfig{}, fmt.Errorf("field %s: %w", name, domain.ErrNotFound)
	}
	all, err := w.fields.List(ctx)
	if err != nil {
		return domain.FieldConfig{}, fmt.Errorf("list fields: %w", err)
	}
	applicable := rules.SelectApplicable(rules.MatchNameFold(all, name), category)
	if len(applicable) == 0 {
		return domain.FieldConfig{}, fmt.Errorf("field %s: %w", name, domain.ErrNotFound)
	}
	return applicable[0], nil
}

var errStaleRun = errors.New("stale enhancement run")

// step applies fn to the run's field state while the run is still current.
// It returns errStaleRun with the latest snapshot otherwise.
func (w *Wizard) step(ctx context.Context, r run, fn func(*FieldState)) (Session, error) {
	snap, err := w.sessions.Update(ctx, r.sessionID, func(s *Session) error {
		st, ok := s.States[r.field]
		if s.Epoch != r.epoch || !ok || st.attempt != r.attempt {
			return errStaleRun
		}
		fn(&st)
		s.States[r.field] = st
		s.UpdatedAt = w.now()
		return nil
	})
	if errors.Is(err, errStaleRun) {
		w.logger.Debug().Str("session", r.sessionID).Str("field", r.field).Msg("enhancement: dropping stale result")
	}
	return snap, err
}

func (w *Wizard) finish(ctx context.Context, r run, fn func(*FieldState)) (Session, error) {
	snap, err := w.step(ctx, r, func(st *FieldState) {
		st.IsLoading = false
		fn(st)
	})
	if errors.Is(err, errStaleRun) {
		return snap, nil
	}
	return snap, err
}

// Accept keeps the enhanced value, or the original one for a skipped field,
// and moves on. New content is fed back into the goldstandard corpus.
func (w *Wizard) Accept(ctx context.Context, id string) (Session, error) {
	var harvest *domain.GoldstandardExample
	snap, err := w.sessions.Update(ctx, id, func(s *Session) error {
		field := s.CurrentField()
		st, ok := s.States[field]
		if s.ShowSummary || s.Confirmed || !ok || st.IsLoading {
			return fmt.Errorf("%w: nothing to accept", domain.ErrInvalidTransition)
		}
		if st.Phase != PhaseAwaitingDecision && st.Phase != PhaseSkipped {
			return fmt.Errorf("%w: field %s is %s", domain.ErrInvalidTransition, field, st.Phase)
		}
		if st.Enhanced != nil {
			value := *st.Enhanced
			if strings.TrimSpace(value) != "" && value != s.Working.Text(field) {
				harvest = &domain.GoldstandardExample{
					Content:    value,
					FieldName:  field,
					Categories: []string{s.Working.CategoryName},
					Products:   []string{s.Working.Code},
					CreatedAt:  w.now(),
					Source:     domain.GoldstandardSourceAuto,
					Language:   s.Language,
				}
			}
			s.Working = s.Working.WithValue(field, value)
		}
		st.Accepted = true
		st.Declined = false
		st.Phase = PhaseAccepted
		s.States[field] = st
		s.advance()
		s.UpdatedAt = w.now()
		return nil
	})
	if err != nil {
		return snap, err
	}
	if harvest != nil && w.goldstandard != nil {
		added, err := w.goldstandard.AppendIfAbsent(ctx, *harvest)
		if err != nil {
			w.logger.Error().Err(err).Str("field", harvest.FieldName).Msg("enhancement: goldstandard harvest failed")
		} else if added {
			w.logger.Info().Str("field", harvest.FieldName).Str("language", harvest.Language).Msg("enhancement: added goldstandard example")
		}
	}
	return snap, nil
}

// Decline leaves the working product unchanged and moves on.
func (w *Wizard) Decline(ctx context.Context, id string) (Session, error) {
	return w.sessions.Update(ctx, id, func(s *Session) error {
		if s.ShowSummary || s.Confirmed {
			return fmt.Errorf("%w: nothing to decline", domain.ErrInvalidTransition)
		}
		field := s.CurrentField()
		st := s.States[field]
		if st.IsLoading {
			return fmt.Errorf("%w: field %s is still loading", domain.ErrInvalidTransition, field)
		}
		st.Declined = true
		st.Accepted = false
		st.Phase = PhaseDeclined
		s.States[field] = st
		s.advance()
		s.UpdatedAt = w.now()
		return nil
	})
}

// Back returns from the summary to the last field, or to the previous field.
func (w *Wizard) Back(ctx context.Context, id string) (Session, error) {
	return w.sessions.Update(ctx, id, func(s *Session) error {
		if s.Confirmed {
			return fmt.Errorf("%w: session already confirmed", domain.ErrInvalidTransition)
		}
		switch {
		case s.ShowSummary:
			s.ShowSummary = false
			s.Current = len(s.Fields) - 1
		case s.Current > 0:
			s.Current--
		}
		s.UpdatedAt = w.now()
		return nil
	})
}

// SetLanguage switches the working language and restarts the review from
// the first field. Runs still in flight are discarded when they finish.
func (w *Wizard) SetLanguage(ctx context.Context, id, lang string) (Session, error) {
	if lang == "" {
		return Session{}, fmt.Errorf("%w: language is required", domain.ErrInvalidTransition)
	}
	return w.sessions.Update(ctx, id, func(s *Session) error {
		if s.Confirmed {
			return fmt.Errorf("%w: session already confirmed", domain.ErrInvalidTransition)
		}
		s.Language = lang
		s.reset()
		s.UpdatedAt = w.now()
		return nil
	})
}

// SummaryRow is one line of the review summary.
type SummaryRow struct {
	Field  string `json:"field"`
	Status string `json:"status"`
	Value  string `json:"value"`
}

// Summary tabulates the outcome of every field.
func (w *Wizard) Summary(ctx context.Context, id string) ([]SummaryRow, error) {
	s, err := w.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(&s), nil
}

func summarize(s *Session) []SummaryRow {
	rows := make([]SummaryRow, 0, len(s.Fields))
	for _, field := range s.Fields {
		st := s.States[field]
		row := SummaryRow{Field: field, Status: fieldStatus(st), Value: s.Working.Text(field)}
		if st.Enhanced != nil {
			row.Value = *st.Enhanced
		}
		rows = append(rows, row)
	}
	return rows
}

func fieldStatus(st FieldState) string {
	switch {
	case st.Accepted:
		threshold := st.Threshold
		if threshold == 0 {
			threshold = domain.DefaultQualityThreshold
		}
		if st.Skipped && st.Quality != nil && st.Quality.Rating >= threshold {
			return StatusNotChanged
		}
		return StatusAccepted
	case st.Declined:
		return StatusDeclined
	case st.Skipped:
		return StatusSkipped
	default:
		return StatusPending
	}
}

// Confirm commits the working product. The session must be at its summary.
func (w *Wizard) Confirm(ctx context.Context, id string) (domain.Product, error) {
	s, err := w.sessions.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if s.Confirmed || !s.ShowSummary {
		return domain.Product{}, fmt.Errorf("%w: confirm needs the summary step", domain.ErrInvalidTransition)
	}

	var changed []string
	for _, field := range s.Fields {
		if s.Working.Text(field) != s.Original.Text(field) {
			changed = append(changed, field)
		}
	}
	if err := w.products.Update(ctx, s.Original.Identifier(), s.Working, s.Original, changed, s.Language); err != nil {
		return domain.Product{}, fmt.Errorf("save product %s: %w", s.ProductCode, err)
	}

	final, err := w.sessions.Update(ctx, id, func(cur *Session) error {
		if cur.Epoch != s.Epoch || !cur.ShowSummary {
			return fmt.Errorf("%w: session changed while confirming", domain.ErrInvalidTransition)
		}
		cur.Confirmed = true
		cur.UpdatedAt = w.now()
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	for _, row := range summarize(&final) {
		w.metrics.RecordWizardOutcome(row.Status)
	}
	w.logger.Info().Str("session", id).Str("product", s.ProductCode).Strs("changed", changed).Msg("enhancement: session confirmed")
	return final.Working, nil
}
