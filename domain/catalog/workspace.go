package catalog

import "sync"

// Workspace is a temporary directory holding one cloned working tree for the
// duration of its enumeration.
type Workspace struct {
	path    string
	uri     string
	release func() error
	once    *sync.Once
	err     *error
}

// NewWorkspace creates a new Workspace. release is called at most once.
func NewWorkspace(path, uri string, release func() error) Workspace {
	var err error
	return Workspace{
		path:    path,
		uri:     uri,
		release: release,
		once:    &sync.Once{},
		err:     &err,
	}
}

// Path returns the local filesystem path.
func (w Workspace) Path() string { return w.path }

// URI returns the repository URI the workspace was cloned from.
func (w Workspace) URI() string { return w.uri }

// Release deletes the workspace. Later calls return the first call's result.
func (w Workspace) Release() error {
	if w.once == nil || w.release == nil {
		return nil
	}
	w.once.Do(func() {
		*w.err = w.release()
	})
	return *w.err
}
