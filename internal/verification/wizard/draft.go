// Package wizard drives the multi-step KYC form: personal information, ID
// upload, face scans and acknowledgment, followed by the verification run.
package wizard

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
)

// Step is the position of a draft in the wizard.
type Step string

const (
	StepPersonalInfo   Step = "personal_info"
	StepIDUpload       Step = "id_upload"
	StepFaceScan       Step = "face_scan"
	StepAcknowledgment Step = "acknowledgment"
	StepProcessing     Step = "processing"
	StepResult         Step = "result"
)

// previous maps each step to the one Back returns to.
var previous = map[Step]Step{
	StepIDUpload:       StepPersonalInfo,
	StepFaceScan:       StepIDUpload,
	StepAcknowledgment: StepFaceScan,
}

// Draft is an in-progress wizard. Drafts live only in memory and are
// discarded once processing starts.
type Draft struct {
	ID           uuid.UUID
	ApplicantID  uuid.UUID
	Step         Step
	PersonalInfo *PersonalInfo
	Claim        decision.IdentityClaim
	IDImage      providers.Image
	FaceScans    []providers.Image
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Completed reports which steps hold data, for clients resuming a draft.
func (d *Draft) Completed() []Step {
	var out []Step
	if d.PersonalInfo != nil {
		out = append(out, StepPersonalInfo)
	}
	if !d.IDImage.IsZero() {
		out = append(out, StepIDUpload)
	}
	if len(d.FaceScans) > 0 {
		out = append(out, StepFaceScan)
	}
	return out
}

func (d *Draft) clone() *Draft {
	c := *d
	if d.PersonalInfo != nil {
		p := *d.PersonalInfo
		c.PersonalInfo = &p
	}
	c.FaceScans = slices.Clone(d.FaceScans)
	return &c
}
