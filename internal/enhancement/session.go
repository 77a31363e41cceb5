package enhancement

import (
	"time"

	"catalogstudio/internal/domain"
)

// Phase is where a field, or the whole session, stands in the review flow.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseEvaluatingQuality Phase = "evaluating_quality"
	PhaseSkipped           Phase = "skipped"
	PhaseEnhancing         Phase = "enhancing"
	PhaseAwaitingDecision  Phase = "awaiting_decision"
	PhaseAccepted          Phase = "accepted"
	PhaseDeclined          Phase = "declined"
	PhaseSummary           Phase = "summary"
	PhaseConfirmed         Phase = "confirmed"
)

// FieldState is the review state of one field.
type FieldState struct {
	Phase      Phase                    `json:"phase"`
	IsLoading  bool                     `json:"isLoading"`
	Error      string                   `json:"error,omitempty"`
	Enhanced   *string                  `json:"enhanced,omitempty"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	Quality    *domain.Quality          `json:"quality,omitempty"`
	Threshold  int                      `json:"threshold,omitempty"`
	Prompt     string                   `json:"prompt,omitempty"`
	Accepted   bool                     `json:"accepted"`
	Declined   bool                     `json:"declined"`
	Skipped    bool                     `json:"skipped"`

	attempt int
}

// Session is one wizard run over an ordered list of fields of a product.
type Session struct {
	ID          string                `json:"id"`
	ProductCode string                `json:"productCode"`
	Fields      []string              `json:"fields"`
	Language    string                `json:"language"`
	Current     int                   `json:"currentIndex"`
	Phase       Phase                 `json:"phase"`
	ShowSummary bool                  `json:"showSummary"`
	Confirmed   bool                  `json:"confirmed"`
	States      map[string]FieldState `json:"states"`
	Original    domain.Product        `json:"original"`
	Working     domain.Product        `json:"working"`
	Actor       *domain.Actor         `json:"actor,omitempty"`
	Epoch       int                   `json:"epoch"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// CurrentField returns the field under review, or "" once past the end.
func (s *Session) CurrentField() string {
	if s.Current < 0 || s.Current >= len(s.Fields) {
		return ""
	}
	return s.Fields[s.Current]
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() Session {
	out := *s
	out.Fields = append([]string(nil), s.Fields...)
	out.States = make(map[string]FieldState, len(s.States))
	for k, v := range s.States {
		out.States[k] = v
	}
	out.Original = s.Original.Clone()
	out.Working = s.Working.Clone()
	if s.Actor != nil {
		a := *s.Actor
		out.Actor = &a
	}
	return out
}

func (s *Session) refreshPhase() {
	switch {
	case s.Confirmed:
		s.Phase = PhaseConfirmed
	case s.ShowSummary:
		s.Phase = PhaseSummary
	default:
		s.Phase = PhaseIdle
		if st, ok := s.States[s.CurrentField()]; ok {
			s.Phase = st.Phase
		}
	}
}

// advance moves to the next field, or to the summary after the last one.
func (s *Session) advance() {
	if s.Current < len(s.Fields)-1 {
		s.Current++
		return
	}
	s.ShowSummary = true
}

// reset drops every field state and starts over from the first field.
func (s *Session) reset() {
	s.States = map[string]FieldState{}
	s.Current = 0
	s.ShowSummary = false
	s.Working = s.Original.Clone()
	s.Epoch++
}
