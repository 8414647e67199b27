package genmodel

import (
	"context"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
)

// AgeEstimator estimates age from a live capture and checks it against the
// declared date of birth.
type AgeEstimator struct {
	id     string
	client *Client
}

func NewAgeEstimator(id string, client *Client) *AgeEstimator {
	return &AgeEstimator{id: id, client: client}
}

func (a *AgeEstimator) ID() string { return a.id }

type estimateAgeInput struct {
	FaceDataURI string `json:"faceDataUri"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (a *AgeEstimator) EstimateAge(ctx context.Context, in providers.AgeEstimationInput) (*decision.AgeEstimate, error) {
	if in.FaceImage.IsZero() || in.DateOfBirth.IsZero() {
		return nil, providers.NewProviderError(providers.ErrorBadInput, a.id, "face image and date of birth are required", nil)
	}
	req := estimateAgeInput{
		FaceDataURI: in.FaceImage.DataURI(),
		DateOfBirth: in.DateOfBirth.Format(decision.DateLayout),
	}

	var out estimateAgeOutput
	if err := a.client.Run(ctx, a.id, FlowEstimateAge, req, &out); err != nil {
		return nil, err
	}
	return out.ageEstimate(), nil
}
