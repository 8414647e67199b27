package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"surebet/internal/decision"
)

// Kind identifies which piece of evidence a provider produces.
type Kind string

const (
	KindIDExtraction Kind = "id_extraction"
	KindFaceMatch    Kind = "face_match"
	KindAgeEstimate  Kind = "age_estimate"
)

// Identified is implemented by every provider so failures and metrics can be
// attributed to a concrete backend.
type Identified interface {
	ID() string
}

// IDExtractionInput carries the photographed ID document.
type IDExtractionInput struct {
	IDImage Image
}

// FaceComparisonInput pairs the ID photo with one or more live captures.
type FaceComparisonInput struct {
	IDImage    Image
	LiveImages []Image
}

// AgeEstimationInput pairs a live capture with the declared date of birth.
type AgeEstimationInput struct {
	FaceImage   Image
	DateOfBirth time.Time
}

// IDExtractor reads identity fields off an ID document.
type IDExtractor interface {
	Identified
	ExtractID(ctx context.Context, in IDExtractionInput) (*decision.ExtractedIdentity, error)
}

// FaceComparer decides whether live captures show the person on the ID.
type FaceComparer interface {
	Identified
	CompareFaces(ctx context.Context, in FaceComparisonInput) (*decision.FacialMatch, error)
}

// AgeEstimator checks the apparent age of a face against a declared DOB.
type AgeEstimator interface {
	Identified
	EstimateAge(ctx context.Context, in AgeEstimationInput) (*decision.AgeEstimate, error)
}

// Accepted image types.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

// MaxImageBytes bounds a single decoded image.
const MaxImageBytes = 8 << 20

var (
	ErrInvalidDataURI       = errors.New("invalid data uri")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image too large")
	ErrEmptyImage           = errors.New("empty image")
)

// Image is a decoded image payload.
type Image struct {
	MIME string
	Data []byte
}

// ParseDataURI decodes a "data:<mime>;base64,<payload>" string as sent by the
// wizard camera and upload widgets.
func ParseDataURI(raw string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("%w: payload must be base64", ErrInvalidDataURI)
	}
	mime = strings.ToLower(mime)
	if !SupportedMIME(mime) {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedImageType, mime)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	return Image{MIME: mime, Data: data}, nil
}

// SupportedMIME reports whether mime is an accepted image type.
func SupportedMIME(mime string) bool {
	switch mime {
	case MIMEJPEG, MIMEPNG, MIMEWebP:
		return true
	}
	return false
}

// DataURI renders the image in data URI form.
func (i Image) DataURI() string {
	return "data:" + i.MIME + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// IsZero reports whether the image carries no payload.
func (i Image) IsZero() bool {
	return len(i.Data) == 0
}
