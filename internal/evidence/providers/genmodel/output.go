package genmodel

import "surebet/internal/decision"

// Flow outputs as the gateway returns them. Every field is a pointer so that
// an absent field fails the required check instead of decoding to its zero
// value.

type extractIDOutput struct {
	FullName    *string `json:"fullName" validate:"required,min=1"`
	DateOfBirth *string `json:"dateOfBirth" validate:"required"`
	Address     *string `json:"address" validate:"required"`
	Gender      *string `json:"gender" validate:"required"`
}

func (o extractIDOutput) identity() *decision.ExtractedIdentity {
	return &decision.ExtractedIdentity{
		FullName:    *o.FullName,
		DateOfBirth: *o.DateOfBirth,
		Address:     *o.Address,
		Gender:      *o.Gender,
	}
}

type compareFacesOutput struct {
	MatchConfidence *float64 `json:"matchConfidence" validate:"required,gte=0,lte=1"`
	IsMatch         *bool    `json:"isMatch" validate:"required"`
	ReviewRequired  *bool    `json:"reviewRequired" validate:"required"`
}

func (o compareFacesOutput) facialMatch() *decision.FacialMatch {
	return &decision.FacialMatch{
		MatchConfidence: *o.MatchConfidence,
		IsMatch:         *o.IsMatch,
		ReviewRequired:  *o.ReviewRequired,
	}
}

type estimateAgeOutput struct {
	EstimatedAge   *int  `json:"estimatedAge" validate:"required,gte=0,lte=150"`
	AgeMatchesID   *bool `json:"ageMatchesId" validate:"required"`
	ReviewRequired *bool `json:"reviewRequired" validate:"required"`
}

func (o estimateAgeOutput) ageEstimate() *decision.AgeEstimate {
	return &decision.AgeEstimate{
		EstimatedAge:   *o.EstimatedAge,
		AgeMatchesID:   *o.AgeMatchesID,
		ReviewRequired: *o.ReviewRequired,
	}
}
