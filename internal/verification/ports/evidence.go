package ports

import (
	"context"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
)

// The evidence ports mirror the provider interfaces so the service can be
// tested against generated mocks without depending on a concrete adapter.

type IDExtractor interface {
	ExtractID(ctx context.Context, in providers.IDExtractionInput) (*decision.ExtractedIdentity, error)
}

type FaceComparer interface {
	CompareFaces(ctx context.Context, in providers.FaceComparisonInput) (*decision.FacialMatch, error)
}

type AgeEstimator interface {
	EstimateAge(ctx context.Context, in providers.AgeEstimationInput) (*decision.AgeEstimate, error)
}
