package decision

// User-facing statements. They are rendered verbatim by the wizard, so they
// must stay plain language and never carry scores, digits or field names.
const (
	ReasonNameMismatch = "The name on your ID does not appear to match the name you entered."
	ReasonDOBMismatch  = "The date of birth on your ID does not appear to match the date of birth you entered."
	ReasonFaceReview   = "We could not confidently match your face to the photo on your ID."
	ReasonAgeReview    = "Your apparent age could not be confirmed against the date of birth you provided."
	ReasonFaceMismatch = "The face in your live photos does not match the photo on your ID."
	ReasonSystemError  = "An unexpected error occurred while verifying your identity. Please try again later."
)

var signalReasons = map[Signal]string{
	SignalNameMismatch: ReasonNameMismatch,
	SignalDOBMismatch:  ReasonDOBMismatch,
	SignalFaceReview:   ReasonFaceReview,
	SignalAgeReview:    ReasonAgeReview,
	SignalFaceMismatch: ReasonFaceMismatch,
	SignalSystemError:  ReasonSystemError,
}

// Reason returns the user-safe statement for a signal.
func Reason(s Signal) string {
	return signalReasons[s]
}

func reasonsFor(signals []Signal) []string {
	out := make([]string, 0, len(signals))
	for _, s := range signals {
		out = append(out, Reason(s))
	}
	return out
}
