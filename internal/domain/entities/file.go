package entities

// FileContent is a file read from a repository at a given ref.
// Hash is the provider's identifier of the current version (blob SHA on
// GitHub, last commit ID on GitLab) and must be passed back to update it.
type FileContent struct {
	Path    string
	Content []byte
	Hash    string
}

// FileWriteInput describes a single-file commit on a branch.
// An empty PriorHash creates the file; a non-empty one updates it.
type FileWriteInput struct {
	Path      string
	Branch    string
	Content   []byte
	Message   string
	PriorHash string
}
