package validation

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/media"
	"catalogstudio/internal/providers/llm"
)

type fakeAnalyzer struct {
	byURL map[string]media.Analysis
	calls [][]string
}

func (f *fakeAnalyzer) AnalyzeAll(_ context.Context, urls []string) []media.Analysis {
	f.calls = append(f.calls, urls)
	out := make([]media.Analysis, len(urls))
	for i, u := range urls {
		out[i] = f.byURL[u]
	}
	return out
}

type fakeJudge struct {
	verdict llm.Verdict
	err     error
	system  string
	prompt  string
}

func (f *fakeJudge) Validate(_ context.Context, system, prompt string) (llm.Verdict, error) {
	f.system, f.prompt = system, prompt
	return f.verdict, f.err
}

type fakeGoldstandard struct {
	examples []domain.GoldstandardExample
	err      error
}

func (f *fakeGoldstandard) FindByFieldAndLanguage(_ context.Context, field, lang string) ([]domain.GoldstandardExample, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.GoldstandardExample
	for _, ex := range f.examples {
		if ex.FieldName == field && ex.Language == lang {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (f *fakeGoldstandard) AppendIfAbsent(context.Context, domain.GoldstandardExample) (bool, error) {
	return false, errors.New("read only")
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []domain.RequestLog
}

func (f *fakeRecorder) Record(_ context.Context, entry domain.RequestLog) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return "log-1"
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(250 * time.Millisecond)
		return t
	}
}

var testActor = &domain.Actor{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.UserRoleEditor}
