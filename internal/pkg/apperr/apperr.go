// Package apperr holds the sentinel errors shared across the grading
// pipeline. Every external failure mode maps to exactly one sentinel so
// callers can branch with errors.Is instead of string matching.
package apperr

import "errors"

var (
	// ErrTranscriptNotReady means the conversational-AI service has not
	// finished materializing the conversation yet. Callers may retry the
	// whole grading request later.
	ErrTranscriptNotReady = errors.New("transcript not yet available")
	// ErrTranscriptUpstream covers every other transcript-service failure:
	// network, auth, malformed payload.
	ErrTranscriptUpstream = errors.New("transcript service error")

	// ErrBackendUnavailable means the text-generation backend could not be
	// reached or returned a server error.
	ErrBackendUnavailable = errors.New("grading backend unavailable")
	// ErrRateLimited means the text-generation backend rejected the call
	// with a rate limit.
	ErrRateLimited = errors.New("grading backend rate limited")
	// ErrBackendTimeout means the caller-specified deadline elapsed while
	// waiting on the text-generation backend.
	ErrBackendTimeout = errors.New("grading backend timeout")

	// ErrMalformedResult means the backend output contained no JSON object
	// matching the grading result schema.
	ErrMalformedResult = errors.New("malformed grading result")

	// ErrPersistence wraps storage failures on transcript or grade writes.
	ErrPersistence = errors.New("persistence error")

	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
