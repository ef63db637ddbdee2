package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity or document does not exist in store
// - ErrExpired: cached entry outlived its TTL
// - ErrUnavailable: upstream provider or resource temporarily unavailable
// - ErrNotReady: upstream data exists but is still being prepared
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
	ErrNotReady    = errors.New("not ready")
)
