package recommend

import "errors"

var (
	// ErrEmbeddingUnavailable indicates the embedding provider call failed or
	// timed out.
	ErrEmbeddingUnavailable = errors.New("embedding gateway unavailable")

	// ErrUnknownIdentity indicates the judge returned a title that is not
	// among the supplied candidates. This is an internal consistency fault —
	// a contract violation between components — never a user-facing refusal.
	ErrUnknownIdentity = errors.New("judge selected an unknown identity")
)
