package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/catalogmind/attribute-engine/pkg/llm"
	"github.com/catalogmind/attribute-engine/pkg/models"
)

// MaxAttributeLength caps a single generated attribute, in runes.
const MaxAttributeLength = 50

// attributeResponse is the JSON shape the model is instructed to return.
type attributeResponse struct {
	Attributes []string `json:"attributes"`
}

// MalformedResponseError indicates the model response was not the expected
// JSON object. Raw carries a bounded excerpt of the response for diagnosis.
type MalformedResponseError struct {
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed attribute response: %v (raw: %q)", e.Cause, llm.TruncateSnippet(e.Raw))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the model returned the wrong number of
// attributes.
type CountMismatchError struct {
	Count int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("expected exactly %d attributes, got %d", models.AttributeCount, e.Count)
}

// InvalidAttributeError indicates a returned attribute violated content
// constraints.
type InvalidAttributeError struct {
	Index  int
	Reason string
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("attribute %d is invalid: %s", e.Index, e.Reason)
}

// NormalizeAttributes parses a raw model response and validates it into
// exactly models.AttributeCount attribute strings. It is a pure function
// with no I/O and is safe for concurrent use.
func NormalizeAttributes(raw string) ([]string, error) {
	payload, err := llm.ParseJSONResponse[attributeResponse](raw)
	if err != nil {
		return nil, &MalformedResponseError{Raw: raw, Cause: err}
	}

	attrs := payload.Attributes
	if len(attrs) != models.AttributeCount {
		return nil, &CountMismatchError{Count: len(attrs)}
	}

	for i, attr := range attrs {
		if strings.TrimSpace(attr) == "" {
			return nil, &InvalidAttributeError{Index: i, Reason: "empty"}
		}
		if utf8.RuneCountInString(attr) > MaxAttributeLength {
			return nil, &InvalidAttributeError{
				Index:  i,
				Reason: fmt.Sprintf("longer than %d characters", MaxAttributeLength),
			}
		}
		for _, r := range attr {
			if unicode.IsControl(r) {
				return nil, &InvalidAttributeError{Index: i, Reason: "contains control characters"}
			}
		}
	}

	return attrs, nil
}
