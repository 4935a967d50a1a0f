package scrape

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid url")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrMissingUser         = errors.New("missing user id")
	ErrPersistence         = errors.New("persistence failure")
	ErrJobNotFound         = errors.New("job not found")
	ErrNoRunID             = errors.New("no run id on job")
	ErrStatusFetch         = errors.New("failed to fetch run status")
	ErrNotPending          = errors.New("job is not pending")
	ErrActorUnavailable    = errors.New("actor unavailable")
)
