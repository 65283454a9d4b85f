package entities

import "time"

// FleetMetrics aggregates onboarding records across an organization.
// FullyOnboarded + PartiallyOnboarded + NotOnboarded() always equals Total.
type FleetMetrics struct {
	Total                 int
	FullyOnboarded        int
	PartiallyOnboarded    int
	PullRequestsSubmitted int
	Skipped               int
}

// Add accounts one finished repository record.
func (m *FleetMetrics) Add(record OnboardingRecord) {
	m.Total++
	switch record.Status() {
	case StatusFullyOnboarded:
		m.FullyOnboarded++
	case StatusPartiallyOnboarded:
		m.PartiallyOnboarded++
	case StatusNotOnboarded:
	}
	m.PullRequestsSubmitted += record.PullRequests
	if record.Skipped() {
		m.Skipped++
	}
}

// NotOnboarded is derived so the invariant cannot drift.
func (m FleetMetrics) NotOnboarded() int {
	return m.Total - m.FullyOnboarded - m.PartiallyOnboarded
}

// AuditReport is the complete result of one audit run. Records follow the
// order in which repositories were discovered.
type AuditReport struct {
	Organization string
	Branches     []string
	Metrics      FleetMetrics
	Records      []OnboardingRecord
	Duration     time.Duration
}
