package entities

// OnboardingStatus is the repository-level classification of a scan.
type OnboardingStatus string

const (
	StatusFullyOnboarded     OnboardingStatus = "fully_onboarded"
	StatusPartiallyOnboarded OnboardingStatus = "partially_onboarded"
	StatusNotOnboarded       OnboardingStatus = "not_onboarded"
)

// OnboardingRecord is the outcome of auditing one repository across every
// tracked branch. It is built by the audit command and never changed after
// Classify has been called.
type OnboardingRecord struct {
	Repository           Repository
	OnboardedBranches    []string
	NotOnboardedBranches []string
	FullyOnboarded       bool
	PartiallyOnboarded   bool
	PullRequestSubmitted bool
	PullRequests         int // remediation PRs opened during this run
}

// Classify sets the onboarding flags from the branch lists, given the number
// of tracked branches.
func (r *OnboardingRecord) Classify(trackedBranches int) {
	found := len(r.OnboardedBranches)
	r.FullyOnboarded = trackedBranches > 0 && found == trackedBranches
	r.PartiallyOnboarded = found > 0 && found < trackedBranches
}

// Status returns the classification derived from the flags.
func (r OnboardingRecord) Status() OnboardingStatus {
	switch {
	case r.FullyOnboarded:
		return StatusFullyOnboarded
	case r.PartiallyOnboarded:
		return StatusPartiallyOnboarded
	default:
		return StatusNotOnboarded
	}
}

// Skipped reports whether the repository had no onboarded branch and no
// remediation was submitted for it.
func (r OnboardingRecord) Skipped() bool {
	return len(r.OnboardedBranches) == 0 && !r.PullRequestSubmitted
}
