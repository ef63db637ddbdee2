// Package documents stores uploaded financial statements and serves their
// extracted text to the scoring service.
package documents

import (
	"time"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
)

// FormField returns the multipart field name an upload of kind arrives in.
func FormField(kind scoring.DocumentKind) string {
	switch kind {
	case scoring.IncomeStatement:
		return "income_pdf"
	case scoring.BalanceSheet:
		return "balance_pdf"
	default:
		return string(kind)
	}
}

// Document describes one stored statement.
type Document struct {
	UserID     string
	Kind       scoring.DocumentKind
	Filename   string
	Size       int64
	SHA256     string
	UploadedAt time.Time
}

// File is one uploaded statement before it is stored.
type File struct {
	Kind     scoring.DocumentKind
	Filename string
	Content  []byte
}
