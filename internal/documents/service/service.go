// Package service validates statement uploads and serves extracted text to
// the scoring service.
package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/documents"
	"github.com/aadya-khanna/OpenScore/internal/documents/cache"
	"github.com/aadya-khanna/OpenScore/internal/documents/metrics"
	"github.com/aadya-khanna/OpenScore/internal/scoring"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/platform/sentinel"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

const (
	defaultMaxUploadBytes = 20 << 20
	defaultTextTTL        = 24 * time.Hour
)

// Store persists uploaded statements.
type Store interface {
	// SaveAll stores every file or none of them.
	SaveAll(ctx context.Context, userID string, files []documents.File, uploadedAt time.Time) ([]documents.Document, error)
	Read(ctx context.Context, userID string, kind scoring.DocumentKind) ([]byte, error)
	Stat(ctx context.Context, userID string, kind scoring.DocumentKind) (*documents.Document, error)
}

// Extractor turns PDF bytes into text.
type Extractor interface {
	Text(ctx context.Context, content []byte) (string, error)
}

// Service handles statement uploads and text extraction.
type Service struct {
	store          Store
	extractor      Extractor
	cache          cache.Cache
	logger         *slog.Logger
	metrics        *metrics.Metrics
	textTTL        time.Duration
	maxUploadBytes int64
	now            func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables caching of extracted text by content hash.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithTextTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.textTTL = ttl
		}
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a document service.
func New(store Store, extractor Extractor, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("text extractor is required")
	}
	s := &Service{
		store:          store,
		extractor:      extractor,
		logger:         slog.Default(),
		textTTL:        defaultTextTTL,
		maxUploadBytes: defaultMaxUploadBytes,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MaxUploadBytes is the per-file size limit.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Upload validates and stores both statements. Nothing is stored unless
// every file is valid and both writes succeed.
func (s *Service) Upload(ctx context.Context, userID string, files []documents.File) ([]documents.Document, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	byKind, err := s.validate(files)
	if err != nil {
		return nil, err
	}

	ordered := make([]documents.File, 0, len(scoring.Kinds))
	for _, kind := range scoring.Kinds {
		ordered = append(ordered, byKind[kind])
	}
	stored, err := s.store.SaveAll(ctx, userID, ordered, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store documents",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store documents")
	}
	for _, doc := range stored {
		s.metrics.IncrementUpload(string(doc.Kind))
	}

	s.logger.InfoContext(ctx, "documents uploaded",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"income_bytes", stored[0].Size,
		"balance_bytes", stored[1].Size,
	)
	return stored, nil
}

// Uploaded describes the user's stored statements in upload order. Kinds
// never uploaded are left out.
func (s *Service) Uploaded(ctx context.Context, userID string) ([]documents.Document, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	docs := make([]documents.Document, 0, len(scoring.Kinds))
	for _, kind := range scoring.Kinds {
		doc, err := s.store.Stat(ctx, userID, kind)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to describe stored documents")
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *Service) validate(files []documents.File) (map[scoring.DocumentKind]documents.File, error) {
	byKind := make(map[scoring.DocumentKind]documents.File, len(files))
	for _, f := range files {
		if !f.Kind.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown document %q", f.Kind))
		}
		if _, dup := byKind[f.Kind]; dup {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("duplicate %s file", documents.FormField(f.Kind)))
		}
		byKind[f.Kind] = f
	}

	for _, kind := range scoring.Kinds {
		field := documents.FormField(kind)
		f, ok := byKind[kind]
		switch {
		case !ok:
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("missing %s file", field))
		case !strings.HasSuffix(strings.ToLower(f.Filename), ".pdf"):
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be a PDF file", field))
		case len(f.Content) == 0:
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is empty", field))
		case int64(len(f.Content)) > s.maxUploadBytes:
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds %d bytes", field, s.maxUploadBytes))
		case !bytes.HasPrefix(f.Content, []byte("%PDF")):
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be a PDF file", field))
		}
	}
	return byKind, nil
}

// Text returns the extracted text of the user's statement of kind. It
// returns a *scoring.MissingDocumentError when the statement was never
// uploaded or cannot be parsed.
func (s *Service) Text(ctx context.Context, userID string, kind scoring.DocumentKind) (string, error) {
	content, err := s.store.Read(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", scoring.MissingDocument(kind, err)
		}
		return "", err
	}

	sum := sha256.Sum256(content)
	key := hex.EncodeToString(sum[:])

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.IncrementCacheLookup(metrics.CacheError)
			s.logger.WarnContext(ctx, "text cache lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"kind", kind,
				"error", err,
			)
		case ok:
			s.metrics.IncrementCacheLookup(metrics.CacheHit)
			return text, nil
		default:
			s.metrics.IncrementCacheLookup(metrics.CacheMiss)
		}
	}

	start := time.Now()
	text, err := s.extractor.Text(ctx, content)
	s.metrics.ObserveExtract(string(kind), time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		s.metrics.IncrementExtractFailure(string(kind))
		s.logger.WarnContext(ctx, "document unreadable",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"kind", kind,
			"error", err,
		)
		return "", scoring.MissingDocument(kind, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, s.textTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to cache extracted text",
				"request_id", requestcontext.RequestID(ctx),
				"kind", kind,
				"error", err,
			)
		}
	}
	return text, nil
}
