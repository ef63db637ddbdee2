package scoring

import (
	"errors"
	"fmt"
)

// DocumentKind names one of the two source statements.
type DocumentKind string

const (
	IncomeStatement DocumentKind = "income_statement"
	BalanceSheet    DocumentKind = "balance_sheet"
)

// Kinds lists every document kind required for a score.
var Kinds = []DocumentKind{IncomeStatement, BalanceSheet}

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	return k == IncomeStatement || k == BalanceSheet
}

// ErrMissingDocument is matched by every MissingDocumentError.
var ErrMissingDocument = errors.New("required document missing")

// MissingDocumentError reports that a required statement could not be
// located or read. A document that was read but yielded no metrics is not
// an error.
type MissingDocumentError struct {
	Kind DocumentKind
	Err  error
}

func (e *MissingDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMissingDocument, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMissingDocument, e.Kind)
}

func (e *MissingDocumentError) Unwrap() error { return e.Err }

func (e *MissingDocumentError) Is(target error) bool {
	return target == ErrMissingDocument
}

// MissingDocument builds a MissingDocumentError for kind.
func MissingDocument(kind DocumentKind, cause error) error {
	return &MissingDocumentError{Kind: kind, Err: cause}
}
