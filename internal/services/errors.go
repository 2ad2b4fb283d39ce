package services

// Typed service errors. Handlers map these onto HTTP statuses in one
// place; anything else becomes a 500.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

type UpstreamError struct{ Message string }

func (e *UpstreamError) Error() string { return e.Message }
