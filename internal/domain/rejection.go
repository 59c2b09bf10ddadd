package domain

// RejectionCode classifies why a request was refused. Codes are
// machine-readable; human-facing message rendering happens in whatever
// layer consumes them.
type RejectionCode string

const (
	RejectInvalidRequest       RejectionCode = "invalid_request"
	RejectNotFound             RejectionCode = "not_found"
	RejectOutsideWorkingWindow RejectionCode = "outside_working_window"
	RejectSchedulingConflict   RejectionCode = "scheduling_conflict"
	RejectDuplicateLinkage     RejectionCode = "duplicate_linkage"
	RejectTemporalOrdering     RejectionCode = "temporal_ordering_violation"
	RejectAlreadyExists        RejectionCode = "already_exists"
)

// Rejection is a terminal validation outcome. Rule names the exact
// check that failed and Entity names what it failed against, so the
// caller never loses the distinguishing reason.
type Rejection struct {
	Code   RejectionCode
	Rule   string
	Entity string
}

func (r *Rejection) Error() string {
	if r.Entity == "" {
		return string(r.Code) + ": " + r.Rule
	}
	return string(r.Code) + ": " + r.Rule + " (" + r.Entity + ")"
}

func Rejected(code RejectionCode, rule, entity string) *Rejection {
	return &Rejection{Code: code, Rule: rule, Entity: entity}
}
