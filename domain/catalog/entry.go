// Package catalog provides the repository catalog domain types.
package catalog

// Default seed values restored on every reset.
const (
	DefaultSeedURL      = "https://github.com/junegunn/fzf/blob/master/doc/fzf.txt"
	DefaultSeedFileName = "fzf.txt"
)

// Entry is one indexed file discovered inside a cloned repository.
type Entry struct {
	repositoryURL string
	fileName      string
}

// NewEntry creates a new Entry.
func NewEntry(repositoryURL, fileName string) Entry {
	return Entry{
		repositoryURL: repositoryURL,
		fileName:      fileName,
	}
}

// DefaultSeed returns the entry a freshly reset catalog contains.
func DefaultSeed() Entry {
	return NewEntry(DefaultSeedURL, DefaultSeedFileName)
}

// RepositoryURL returns the URL the file was discovered in.
func (e Entry) RepositoryURL() string { return e.repositoryURL }

// FileName returns the base name of the file.
func (e Entry) FileName() string { return e.fileName }

// Pair returns the entry as a (url, file name) tuple.
func (e Entry) Pair() [2]string { return [2]string{e.repositoryURL, e.fileName} }

// Equal returns true if two entries are equal.
func (e Entry) Equal(other Entry) bool {
	return e.repositoryURL == other.repositoryURL && e.fileName == other.fileName
}

// URLs projects entries onto their repository URLs, keeping order and duplicates.
func URLs(entries []Entry) []string {
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.repositoryURL
	}
	return urls
}
