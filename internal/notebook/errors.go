package notebook

import "errors"

// Error kinds returned by Store. Callers classify with errors.Is; the
// wrapped message carries the underlying cause.
var (
	// ErrDirectoryUnavailable means the notebook root could not be enumerated.
	ErrDirectoryUnavailable = errors.New("notebook directory unavailable")
	// ErrNotFound means no notebook matched the requested name, exactly or by substring.
	ErrNotFound = errors.New("notebook not found")
	// ErrInvalidName means the requested name would resolve outside the root.
	ErrInvalidName = errors.New("invalid notebook name")
	// ErrInvalidFormat means the file is not a JSON object.
	ErrInvalidFormat = errors.New("notebook is not valid JSON")
	// ErrRead means the file could not be read.
	ErrRead = errors.New("failed to read notebook")
)
