package verification

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
	"surebet/internal/verification/models"
)

const defaultEvidenceTimeout = 45 * time.Second

// evidenceError records which provider call sank the attempt.
type evidenceError struct {
	kind providers.Kind
	err  error
}

func (e *evidenceError) Error() string {
	return fmt.Sprintf("%s evidence: %v", e.kind, e.err)
}

func (e *evidenceError) Unwrap() error {
	return e.err
}

// gatherEvidence runs every provider call in parallel under one deadline.
// The first failure cancels the rest.
func (s *Service) gatherEvidence(ctx context.Context, sub models.Submission) (decision.EvidenceBundle, error) {
	ctx, span := tracer.Start(ctx, "verification.gatherEvidence")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.evidenceTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	var bundle decision.EvidenceBundle

	if s.extractor != nil {
		g.Go(func() error {
			out, err := observe(ctx, s, providers.KindIDExtraction, func(ctx context.Context) (*decision.ExtractedIdentity, error) {
				return s.extractor.ExtractID(ctx, providers.IDExtractionInput{IDImage: sub.IDImage})
			})
			bundle.ExtractedIdentity = out
			return err
		})
	}

	g.Go(func() error {
		out, err := observe(ctx, s, providers.KindFaceMatch, func(ctx context.Context) (*decision.FacialMatch, error) {
			return s.faces.CompareFaces(ctx, providers.FaceComparisonInput{
				IDImage:    sub.IDImage,
				LiveImages: sub.FaceScans,
			})
		})
		bundle.FacialMatch = out
		return err
	})

	g.Go(func() error {
		out, err := observe(ctx, s, providers.KindAgeEstimate, func(ctx context.Context) (*decision.AgeEstimate, error) {
			return s.ages.EstimateAge(ctx, providers.AgeEstimationInput{
				FaceImage:   sub.FaceScans[0],
				DateOfBirth: sub.Claim.DateOfBirth,
			})
		})
		bundle.AgeEstimate = out
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evidence gathering failed")
		return decision.EvidenceBundle{}, err
	}
	return bundle, nil
}

// observe wraps one provider call with a span and a latency sample.
func observe[T any](ctx context.Context, s *Service, kind providers.Kind, call func(context.Context) (*T, error)) (*T, error) {
	ctx, span := tracer.Start(ctx, "verification.provider."+string(kind))
	defer span.End()

	start := time.Now()
	out, err := call(ctx)
	s.metrics.ObserveEvidenceLatency(string(kind), time.Since(start))

	if err != nil {
		category := providers.GetCategory(err)
		span.SetAttributes(attribute.String("provider.error_category", string(category)))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(category))
		return nil, &evidenceError{kind: kind, err: err}
	}
	if out == nil {
		err := providers.NewProviderError(providers.ErrorMalformedOutput, string(kind), "provider returned no verdict", nil)
		return nil, &evidenceError{kind: kind, err: err}
	}
	return out, nil
}
