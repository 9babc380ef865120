// Package safety screens user input for crisis language before any retrieval
// or generation happens.
package safety

import (
	"strings"
)

// State is the outcome of screening one input.
type State int

const (
	// Safe inputs continue through the query pipeline.
	Safe State = iota
	// Intercepted inputs are answered with the crisis response only.
	Intercepted
)

func (s State) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Intercepted:
		return "INTERCEPTED"
	}
	return "UNKNOWN"
}

// Verdict is the result of Evaluate.
type Verdict struct {
	State State
	// Keyword is the first configured keyword found, empty when Safe.
	Keyword string
}

// Filter matches input against crisis keywords as case-insensitive substrings.
// It has no state between calls. Benign phrases that contain a keyword
// ("cutting corners") are intercepted too.
type Filter struct {
	keywords []string
	response string
}

// NewFilter creates a Filter. Blank keywords are ignored.
func NewFilter(keywords []string, response string) *Filter {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &Filter{keywords: kw, response: response}
}

// Check reports whether text contains any crisis keyword.
func (f *Filter) Check(text string) bool {
	return f.Evaluate(text).State == Intercepted
}

// Evaluate screens text and names the matching keyword.
func (f *Filter) Evaluate(text string) Verdict {
	lower := strings.ToLower(text)
	for _, k := range f.keywords {
		if strings.Contains(lower, k) {
			return Verdict{State: Intercepted, Keyword: k}
		}
	}
	return Verdict{State: Safe}
}

// Response returns the fixed message shown instead of a generated answer.
func (f *Filter) Response() string {
	return f.response
}
