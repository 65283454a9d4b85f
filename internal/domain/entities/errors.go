package entities

import "errors"

var (
	// ErrBaseBranchMissing is returned when a branch is created from a base
	// branch that does not exist in the repository.
	ErrBaseBranchMissing = errors.New("base branch does not exist")

	// ErrBranchAlreadyExists is returned by providers when the branch to be
	// created is already present.
	ErrBranchAlreadyExists = errors.New("branch already exists")

	// ErrReadOnlyProvider is returned by providers that cannot write.
	ErrReadOnlyProvider = errors.New("provider is read-only")
)
