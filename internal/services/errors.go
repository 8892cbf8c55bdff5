package services

import "errors"

// Таксономия ошибок портала. Хендлеры мапят их в HTTP-статусы; наружу уходит
// только общий текст, без внутренних деталей.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrNotFound        = errors.New("not found")
)
