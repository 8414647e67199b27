package decision

// Evaluate merges one evidence bundle with the applicant's claim into a
// decision. It performs no I/O and reads no clock, so identical inputs
// always produce identical decisions.
//
// Rule order (combine-then-classify):
//  1. Mandatory evidence present (fail closed otherwise)
//  2. Name on ID vs declared name (review)
//  3. DOB on ID vs declared DOB (review)
//  4. Face vs ID photo (non-match is a hard blocker, low confidence is review)
//  5. Estimated age vs declared DOB (review)
func Evaluate(claim IdentityClaim, evidence EvidenceBundle) Decision {
	if evidence.FacialMatch == nil || evidence.AgeEstimate == nil {
		return SystemError()
	}

	var blockers, review []Signal

	if id := evidence.ExtractedIdentity; id != nil {
		if !namesMatch(claim.FullName, id.FullName) {
			review = append(review, SignalNameMismatch)
		}
		if !datesMatch(claim.DateOfBirth, id.DateOfBirth) {
			review = append(review, SignalDOBMismatch)
		}
	}

	switch face := evidence.FacialMatch; {
	case !face.IsMatch:
		blockers = append(blockers, SignalFaceMismatch)
	case face.ReviewRequired:
		review = append(review, SignalFaceReview)
	}

	if age := evidence.AgeEstimate; age.ReviewRequired || !age.AgeMatchesID {
		review = append(review, SignalAgeReview)
	}

	return classify(blockers, review)
}

// classify turns accumulated signals into a decision. Any blocker hides the
// review findings.
func classify(blockers, review []Signal) Decision {
	switch {
	case len(blockers) > 0:
		return Decision{
			Status:  StatusFailure,
			Reasons: reasonsFor(blockers),
			Signals: blockers,
		}
	case len(review) > 0:
		return Decision{
			Status:  StatusReview,
			Reasons: reasonsFor(review),
			Signals: review,
		}
	default:
		return Decision{
			Status:  StatusSuccess,
			Reasons: []string{},
			Signals: []Signal{},
		}
	}
}

// SystemError is the fail-closed decision issued when evidence could not be
// obtained. Its reason differs from every policy failure reason.
func SystemError() Decision {
	return Decision{
		Status:  StatusFailure,
		Reasons: []string{ReasonSystemError},
		Signals: []Signal{SignalSystemError},
	}
}
