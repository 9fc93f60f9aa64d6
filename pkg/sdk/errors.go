package noteseek

import "github.com/sydlabs/noteseek/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                = domain.ErrNotFound
	ErrAlreadyExists           = domain.ErrAlreadyExists
	ErrNoteNotFound            = domain.ErrNoteNotFound
	ErrInvalidNote             = domain.ErrInvalidNote
	ErrInvalidQuery            = domain.ErrInvalidQuery
	ErrVectorDimMismatch       = domain.ErrVectorDimMismatch
	ErrRateLimited             = domain.ErrRateLimited
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationProviderError = domain.ErrGenerationProviderError
)
