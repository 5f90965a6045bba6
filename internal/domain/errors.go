package domain

import "errors"

var (
	// ErrSessionExpired is returned when a user acts without an active session.
	ErrSessionExpired = errors.New("quiz session expired")
	// ErrQuizComplete signals that the session has no questions left.
	ErrQuizComplete = errors.New("quiz complete")
	// ErrQuestionMismatch indicates a submission for a question that is not
	// the session's current one (stale or replayed button click).
	ErrQuestionMismatch = errors.New("question does not match current position")
	// ErrAnswerOutOfDomain indicates a token outside the declared type's
	// answer domain. This is a transport defect, never a wrong answer.
	ErrAnswerOutOfDomain = errors.New("answer token out of domain")
	// ErrMalformedPayload indicates a button-click payload that does not
	// split into the expected tag_number_token shape.
	ErrMalformedPayload = errors.New("malformed interaction payload")
	// ErrNotRegistered is returned when asking for stats of an unknown user.
	ErrNotRegistered = errors.New("student not registered")
	// ErrKeyRowMalformed wraps row-level answer-key parse failures.
	ErrKeyRowMalformed = errors.New("malformed answer key row")
)
