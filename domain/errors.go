package domain

import "errors"

// Repository errors
var (
	ErrUserNotFound      = errors.New("user-not-found")
	ErrDuplicateUsername = errors.New("duplicate-username")

	UnexpectedDatabaseError = errors.New("unexpected-database-error")
)

// Token errors
var (
	ErrExpiredToken          = errors.New("expired-token")
	ErrInvalidSigningAlg     = errors.New("invalid-signing-alg")
	ErrInvalidTokenSignature = errors.New("invalid-token-signature")
	ErrCorruptedToken        = errors.New("corrupted-token")
)

// Crypto errors
var (
	UnexpectedPasswordHashComparisonError = errors.New("unexpected-password-hash-comparison-error")
	UnexpectedTokenGenerationError        = errors.New("unexpected-token-generation-error")
)
