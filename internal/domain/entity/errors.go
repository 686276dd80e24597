package entity

import "errors"

// Standard domain errors
var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrInvalidTier      = errors.New("invalid payment tier")
	ErrInvalidRequest   = errors.New("invalid request parameters")
	ErrArchiveDisabled  = errors.New("archive is not configured")
)
