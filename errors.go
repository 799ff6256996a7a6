package arxivhunter

import "errors"

var (
	// ErrNetwork reports an unreachable host or a non-2xx response.
	ErrNetwork = errors.New("network error")

	// ErrParse reports missing or malformed metadata, a malformed
	// identifier, or a store row that does not decode.
	ErrParse = errors.New("parse error")

	// ErrFileState reports a category store that was expected but is
	// missing. Callers usually log it and carry on.
	ErrFileState = errors.New("file state error")

	// ErrExternalTool reports a non-zero exit from the LaTeX toolchain or
	// the viewer.
	ErrExternalTool = errors.New("external tool error")

	// ErrExists reports an identifier that already has a row.
	ErrExists = errors.New("record already exists")

	// ErrNotFound reports an identifier with no row in any store.
	ErrNotFound = errors.New("record not found")
)
