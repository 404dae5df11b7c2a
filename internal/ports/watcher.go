package ports

// Watcher monitors deck files and reports changes.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute path
	// of the changed deck after events have settled. It may be invoked from any
	// goroutine.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring. Safe to call multiple times.
	Stop() error
}
