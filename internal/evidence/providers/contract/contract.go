// Package contract holds reusable test suites that every evidence provider
// adapter must pass, regardless of the backend it talks to.
package contract

import (
	"context"
	"testing"
	"time"

	"surebet/internal/evidence/providers"
)

// ExtractorCase is one OCR contract case.
type ExtractorCase struct {
	Name         string
	Input        providers.IDExtractionInput
	ValidateFunc func(t *testing.T, id string, fullName string, dob string)
}

// FaceCase is one face comparison contract case.
type FaceCase struct {
	Name        string
	Input       providers.FaceComparisonInput
	WantIsMatch *bool
}

// AgeCase is one age estimation contract case.
type AgeCase struct {
	Name    string
	Input   providers.AgeEstimationInput
	WantAge *bool
}

// ContractSuite is a collection of contract tests for one provider set.
// Any of the providers may be nil, in which case its cases are skipped.
type ContractSuite struct {
	ProviderID string
	Extractor  providers.IDExtractor
	Comparer   providers.FaceComparer
	Estimator  providers.AgeEstimator

	ExtractorCases []ExtractorCase
	FaceCases      []FaceCase
	AgeCases       []AgeCase

	// Timeout bounds each call. Defaults to five seconds.
	Timeout time.Duration
}

func (s *ContractSuite) ctx(t *testing.T) context.Context {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Run executes all contract tests in the suite
func (s *ContractSuite) Run(t *testing.T) {
	for _, tc := range s.ExtractorCases {
		t.Run("extract/"+tc.Name, func(t *testing.T) {
			if s.Extractor == nil {
				t.Skip("no extractor configured")
			}
			if s.Extractor.ID() != s.ProviderID {
				t.Errorf("expected provider ID %s, got %s", s.ProviderID, s.Extractor.ID())
			}

			got, err := s.Extractor.ExtractID(s.ctx(t), tc.Input)
			if err != nil {
				t.Fatalf("extract failed: %v", err)
			}
			if got == nil {
				t.Fatal("extract returned nil identity without error")
			}
			if got.FullName == "" {
				t.Error("full name not set")
			}
			if tc.ValidateFunc != nil {
				tc.ValidateFunc(t, s.Extractor.ID(), got.FullName, got.DateOfBirth)
			}
		})
	}

	for _, tc := range s.FaceCases {
		t.Run("face/"+tc.Name, func(t *testing.T) {
			if s.Comparer == nil {
				t.Skip("no face comparer configured")
			}

			got, err := s.Comparer.CompareFaces(s.ctx(t), tc.Input)
			if err != nil {
				t.Fatalf("compare failed: %v", err)
			}
			if got == nil {
				t.Fatal("compare returned nil verdict without error")
			}
			if got.MatchConfidence < 0 || got.MatchConfidence > 1.0 {
				t.Errorf("confidence %f out of range [0, 1]", got.MatchConfidence)
			}
			if tc.WantIsMatch != nil && got.IsMatch != *tc.WantIsMatch {
				t.Errorf("expected isMatch=%v, got %v", *tc.WantIsMatch, got.IsMatch)
			}
		})
	}

	for _, tc := range s.AgeCases {
		t.Run("age/"+tc.Name, func(t *testing.T) {
			if s.Estimator == nil {
				t.Skip("no age estimator configured")
			}

			got, err := s.Estimator.EstimateAge(s.ctx(t), tc.Input)
			if err != nil {
				t.Fatalf("estimate failed: %v", err)
			}
			if got == nil {
				t.Fatal("estimate returned nil verdict without error")
			}
			if got.EstimatedAge < 0 || got.EstimatedAge > 150 {
				t.Errorf("estimated age %d out of range", got.EstimatedAge)
			}
			if tc.WantAge != nil && got.AgeMatchesID != *tc.WantAge {
				t.Errorf("expected ageMatchesId=%v, got %v", *tc.WantAge, got.AgeMatchesID)
			}
		})
	}
}

// ErrorContractTest validates that provider errors follow the taxonomy
type ErrorContractTest struct {
	Name          string
	Call          func(ctx context.Context) error
	ExpectedError providers.ErrorCategory
	ExpectedRetry bool
}

// Run executes an error contract test
func (ect *ErrorContractTest) Run(t *testing.T) {
	t.Run(ect.Name, func(t *testing.T) {
		err := ect.Call(context.Background())
		if err == nil {
			t.Fatal("expected error but got none")
		}
		if !providers.IsProviderError(err) {
			t.Errorf("expected a ProviderError, got %T: %v", err, err)
		}

		category := providers.GetCategory(err)
		if category != ect.ExpectedError {
			t.Errorf("expected error category %s, got %s", ect.ExpectedError, category)
		}

		isRetryable := providers.IsRetryable(err)
		if isRetryable != ect.ExpectedRetry {
			t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, isRetryable)
		}
	})
}

// Bool returns a pointer to b, for optional expectations.
func Bool(b bool) *bool { return &b }
