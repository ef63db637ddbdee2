// Package extract turns statement PDFs into plain text, one line per text row
// and pages in order.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for content without a PDF header.
var ErrNotPDF = errors.New("content is not a pdf document")

// ErrUnreadable wraps parser failures.
var ErrUnreadable = errors.New("pdf document is unreadable")

// document is the part of a parsed PDF the extractor reads.
type document interface {
	NumPage() int
	PageRows(page int) ([]string, error)
}

// Extractor reads page text from PDF bytes.
type Extractor struct {
	open func(content []byte) (document, error)
}

// New creates an extractor backed by github.com/ledongthuc/pdf.
func New() *Extractor {
	return &Extractor{open: openPDF}
}

// Text returns the text of every page, rows newline-joined. Blank rows are
// dropped. A document with no text yields "" and no error.
func (e *Extractor) Text(ctx context.Context, content []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\r\n "), []byte("%PDF")) {
		return "", ErrNotPDF
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	doc, err := e.open(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var lines []string
	for page := 1; page <= doc.NumPage(); page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := doc.PageRows(page)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, page, err)
		}
		for _, row := range rows {
			if strings.TrimSpace(row) != "" {
				lines = append(lines, row)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

type pdfDocument struct {
	r *pdf.Reader
}

func openPDF(content []byte) (document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return &pdfDocument{r: r}, nil
}

func (d *pdfDocument) NumPage() int { return d.r.NumPage() }

func (d *pdfDocument) PageRows(page int) ([]string, error) {
	p := d.r.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, JoinRow(row.Content))
	}
	return out, nil
}

// JoinRow concatenates the text fragments of one row left to right. A space
// is inserted where the horizontal gap between fragments is wider than a
// fifth of the font size, which is how column layouts come apart.
func JoinRow(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > prev.FontSize*0.2 && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return strings.TrimSpace(b.String())
}
