package enhancement

import (
	"context"
	"sync"

	"catalogstudio/internal/domain"
)

type fakeGenerator struct {
	mu          sync.Mutex
	quality     domain.Quality
	qualityErr  error
	value       string
	genErr      error
	evalCalls   int
	genCalls    int
	lastPrompt  string
	lastSystem  string
	temperature float64
	// onGenerate runs before Generate returns, for interleaving tests.
	onGenerate func()
}

func (f *fakeGenerator) EvaluateQuality(_ context.Context, system, prompt string) (domain.Quality, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCalls++
	f.lastSystem, f.lastPrompt = system, prompt
	return f.quality, f.qualityErr
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string, temperature float64) (string, error) {
	f.mu.Lock()
	f.genCalls++
	f.lastSystem, f.lastPrompt, f.temperature = system, prompt, temperature
	hook := f.onGenerate
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.value, f.genErr
}

type fakeGoldstandard struct {
	mu       sync.Mutex
	examples []domain.GoldstandardExample
}

func (f *fakeGoldstandard) FindByFieldAndLanguage(_ context.Context, field, lang string) ([]domain.GoldstandardExample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.GoldstandardExample
	for _, ex := range f.examples {
		if ex.FieldName == field && ex.Language == lang {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (f *fakeGoldstandard) AppendIfAbsent(_ context.Context, ex domain.GoldstandardExample) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, have := range f.examples {
		if have.SameContent(ex) {
			return false, nil
		}
	}
	f.examples = append([]domain.GoldstandardExample{ex}, f.examples...)
	return true, nil
}

type fakeClaims struct{ claims []domain.Claim }

func (f *fakeClaims) FindByProductAndLanguage(_ context.Context, code, lang string) ([]domain.Claim, error) {
	var out []domain.Claim
	for _, c := range f.claims {
		if c.AppliesTo(code) && c.Language == lang {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeHistory struct{ entries []domain.HistoryEntry }

func (f *fakeHistory) Append(_ context.Context, e domain.HistoryEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []domain.RequestLog
}

func (f *fakeRecorder) Record(_ context.Context, e domain.RequestLog) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return "id"
}

type fakeFields []domain.FieldConfig

func (f fakeFields) List(context.Context) ([]domain.FieldConfig, error) { return f, nil }

type fakeProducts struct {
	product domain.Product
	saved   *domain.Product
	changed []string
}

func (f *fakeProducts) GetProductData(_ context.Context, code string) (domain.Product, error) {
	if code != f.product.Code {
		return domain.Product{}, domain.ErrNotFound
	}
	return f.product.Clone(), nil
}

func (f *fakeProducts) Update(_ context.Context, _ string, updated, _ domain.Product, changed []string, _ string) error {
	p := updated.Clone()
	f.saved = &p
	f.changed = changed
	return nil
}

type fakeValidator struct{ calls int }

func (f *fakeValidator) ValidateText(_ context.Context, _ domain.FieldConfig, content, _ string) domain.ValidationResult {
	f.calls++
	return domain.ValidationResult{Passed: content != "", Issues: []string{}}
}

var editor = &domain.Actor{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.UserRoleEditor}
