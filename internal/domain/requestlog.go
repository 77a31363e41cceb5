package domain

import "time"

// RequestType classifies an entry of the request log.
type RequestType string

const (
	RequestEnhancement       RequestType = "enhancement"
	RequestValidation        RequestType = "validation"
	RequestGroupValidation   RequestType = "group_validation"
	RequestGroupEnhancement  RequestType = "group_enhancement"
	RequestQualityEvaluation RequestType = "quality_evaluation"
)

// ProductRef is the product summary stored with a request log entry.
type ProductRef struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// NewProductRef summarizes a product the way the request log stores it.
func NewProductRef(p Product) ProductRef {
	return ProductRef{
		ID:       p.Identifier(),
		Code:     p.Code,
		Name:     p.DisplayName(),
		Category: p.Category(),
	}
}

// RequestSource describes which surface triggered a request and why.
type RequestSource struct {
	Component string `json:"component"`
	Command   string `json:"command"`
	Effect    string `json:"effect"`
}

// RequestResults carries outcome details of a logged request.
type RequestResults struct {
	QualityBefore       *int     `json:"qualityBefore,omitempty"`
	QualityAfter        *int     `json:"qualityAfter,omitempty"`
	ValidationPassed    *bool    `json:"validationPassed,omitempty"`
	EnhancementAccepted *bool    `json:"enhancementAccepted,omitempty"`
	ContentLength       int      `json:"contentLength,omitempty"`
	IssuesFound         []string `json:"issuesFound,omitempty"`
	Answer              string   `json:"answer,omitempty"`
}

// RequestLog is one audited call to the validation or enhancement pipeline.
type RequestLog struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	User      Actor           `json:"user"`
	Product   ProductRef      `json:"product"`
	Field     string          `json:"field,omitempty"`
	Type      RequestType     `json:"type"`
	Language  string          `json:"language"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	Duration  int64           `json:"duration,omitempty"`
	Country   string          `json:"country,omitempty"`
	Source    RequestSource   `json:"source"`
	Results   *RequestResults `json:"results,omitempty"`
}
