package entities

// Repository identifies a repository on a Git hosting service.
type Repository struct {
	ID            string
	Owner         string // organization, user or full namespace path
	Name          string
	DefaultBranch string
	RemoteURL     string
	ProviderName  string
}

// FullName returns the "owner/name" form used in log lines.
func (r Repository) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}
