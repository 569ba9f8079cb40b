package services

import (
	"errors"

	"alfredoptarigan/project-matcher/internal/repositories"
)

var (
	// ErrInvalidArgument marks a missing or malformed input. Nothing external has been called.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMatchFailure wraps a failed single-shot knowledge base call during matching.
	ErrMatchFailure = errors.New("match failure")
	// ErrUpstreamCall wraps a failed call to an agent, embedder or vector index.
	ErrUpstreamCall = errors.New("upstream call failed")
	// ErrMalformedResponse marks agent output that is not the JSON we asked for.
	ErrMalformedResponse = errors.New("malformed agent response")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = repositories.ErrNotFound
)
