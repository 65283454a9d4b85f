package entities

// EntryType classifies a single entry of a directory listing.
type EntryType string

const (
	EntryTypeFile      EntryType = "file"
	EntryTypeDirectory EntryType = "dir"
	EntryTypeOther     EntryType = "other" // symlinks, submodules
)

// TreeEntry is one element of a directory listing at a given ref.
type TreeEntry struct {
	Path string
	Name string
	Type EntryType
}

func (e TreeEntry) IsFile() bool      { return e.Type == EntryTypeFile }
func (e TreeEntry) IsDirectory() bool { return e.Type == EntryTypeDirectory }
