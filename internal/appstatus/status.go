package appstatus

// Status is the application pipeline stage of a prospective student.
// The numeric values are the backend wire format and must not change.
type Status int

const (
	Pending     Status = 0
	UnderReview Status = 1
	Approved    Status = 2
	Rejected    Status = 3
	Incomplete  Status = 4
)

// All lists every known status in wire order, for building tab bars.
var All = []Status{Pending, UnderReview, Approved, Rejected, Incomplete}

var labels = map[Status]string{
	Pending:     "Pending",
	UnderReview: "Under Review",
	Approved:    "Approved",
	Rejected:    "Rejected",
	Incomplete:  "Incomplete",
}

var colors = map[Status]string{
	Pending:     "warning",
	UnderReview: "info",
	Approved:    "success",
	Rejected:    "danger",
	Incomplete:  "secondary",
}

// Label returns the display label, or "Unknown" for unmapped values.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return "Unknown"
}

// Color returns the badge color token used by the UI, or "secondary"
// for unmapped values.
func (s Status) Color() string {
	if c, ok := colors[s]; ok {
		return c
	}
	return "secondary"
}

// Known reports whether s is one of the defined wire values.
func (s Status) Known() bool {
	_, ok := labels[s]
	return ok
}

// ParseLabel maps a display label back to its wire value.
func ParseLabel(label string) (Status, bool) {
	for s, l := range labels {
		if l == label {
			return s, true
		}
	}
	return 0, false
}
