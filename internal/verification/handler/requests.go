package handler

import (
	"errors"
	"fmt"
	"strings"

	"surebet/internal/evidence/providers"
	"surebet/internal/verification/models"
	"surebet/internal/verification/wizard"
	dErrors "surebet/pkg/domain-errors"
)

// MaxImagePayloadBytes caps request bodies that carry base64 images.
const MaxImagePayloadBytes = 64 << 20

// VerifyRequest is the body of POST /api/kyc/verify: the whole wizard in one
// call.
type VerifyRequest struct {
	PersonalInfo wizard.PersonalInfo `json:"personal_info"`
	IDDocument   string              `json:"id_document"`
	FaceScans    []string            `json:"face_scans"`

	idImage   providers.Image
	faceScans []providers.Image
}

// Validate parses the images. Personal information is validated by the
// wizard rules once the request clock is known.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	img, err := parseImage("id_document", r.IDDocument)
	if err != nil {
		return err
	}
	r.idImage = img
	scans, err := parseFaceScans(r.FaceScans)
	if err != nil {
		return err
	}
	r.faceScans = scans
	return nil
}

func (r *VerifyRequest) IDImage() providers.Image     { return r.idImage }
func (r *VerifyRequest) FaceImages() []providers.Image { return r.faceScans }

// PersonalInfoRequest is the body of PUT .../personal-info.
type PersonalInfoRequest struct {
	wizard.PersonalInfo
}

func (r *PersonalInfoRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// IDDocumentRequest is the body of PUT .../id-document.
type IDDocumentRequest struct {
	Image string `json:"image"`

	parsed providers.Image
}

func (r *IDDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	img, err := parseImage("image", r.Image)
	if err != nil {
		return err
	}
	r.parsed = img
	return nil
}

// FaceScansRequest is the body of PUT .../face-scans.
type FaceScansRequest struct {
	Images []string `json:"images"`

	parsed []providers.Image
}

func (r *FaceScansRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	scans, err := parseFaceScans(r.Images)
	if err != nil {
		return err
	}
	r.parsed = scans
	return nil
}

// ResolveRequest is the body of POST /api/admin/kyc/attempts/{id}/resolve.
type ResolveRequest struct {
	Outcome  string `json:"outcome"`
	Reviewer string `json:"reviewer"`
	Note     string `json:"note"`
}

func (r *ResolveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Note) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "note must be at most 2000 characters")
	}
	r.Outcome = strings.ToLower(strings.TrimSpace(r.Outcome))
	if !models.ResolutionOutcome(r.Outcome).Valid() {
		return dErrors.New(dErrors.CodeValidation, "outcome must be approved or rejected")
	}
	r.Reviewer = strings.TrimSpace(r.Reviewer)
	if r.Reviewer == "" {
		return dErrors.New(dErrors.CodeValidation, "reviewer is required")
	}
	return nil
}

func parseFaceScans(raw []string) ([]providers.Image, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one face scan is required")
	}
	if len(raw) > wizard.MaxFaceScans {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("at most %d face scans are allowed", wizard.MaxFaceScans))
	}
	out := make([]providers.Image, 0, len(raw))
	for i, s := range raw {
		img, err := parseImage(fmt.Sprintf("face_scans[%d]", i), s)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func parseImage(field, raw string) (providers.Image, error) {
	if strings.TrimSpace(raw) == "" {
		return providers.Image{}, dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	img, err := providers.ParseDataURI(raw)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrUnsupportedImageType):
			return providers.Image{}, dErrors.New(dErrors.CodeValidation, field+" must be a JPEG, PNG or WebP image")
		case errors.Is(err, providers.ErrImageTooLarge):
			return providers.Image{}, dErrors.New(dErrors.CodeValidation, field+" is too large")
		default:
			return providers.Image{}, dErrors.New(dErrors.CodeValidation, field+" must be a base64 data URI")
		}
	}
	return img, nil
}
