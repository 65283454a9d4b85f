package entities

// PullRequestInput describes a pull (or merge) request to be opened.
type PullRequestInput struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
}

// PullRequest is the hosting service's view of an opened pull request.
type PullRequest struct {
	ID           int
	Title        string
	URL          string
	Status       string
	SourceBranch string
	TargetBranch string
}
