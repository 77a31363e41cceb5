package domain

// Quality is a 0-100 rating with a short explanation.
type Quality struct {
	Rating  int    `json:"rating"`
	Remarks string `json:"remarks"`
}

// ValidationResult is the verdict for one field on one product.
type ValidationResult struct {
	Passed             bool     `json:"passed"`
	Issues             []string `json:"issues"`
	Quality            *Quality `json:"quality,omitempty"`
	ValidationCriteria []string `json:"validationCriteria,omitempty"`
	ValidationPrompt   string   `json:"validationPrompt,omitempty"`
}
