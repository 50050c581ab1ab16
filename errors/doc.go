// Package errors provides structured error types for modguard.
//
// Errors are categorized by Phase (which operation failed) and Kind (error
// category). The Error type carries the resource key, a detail message and
// the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCreate, errors.KindInvalidDescriptor).
//		Key("cart").
//		Value(desc).
//		Detail("descriptor %T, want []byte", desc).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidKey(errors.PhaseAcquire, "", "empty key")
//	err := errors.NotFound(errors.PhaseDestroy, "cart")
//
// Kind-only sentinels (ErrInvalidKey, ErrNotFound, ...) match any phase:
//
//	if errors.Is(err, modguarderrors.ErrNotFound) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
