package apkg

// FormatError indicates an .apkg file that is structurally unusable:
// the file is missing, not a ZIP archive, contains no collection
// database, or carries malformed collection metadata.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(msg string, err error) *FormatError {
	return &FormatError{Msg: msg, Err: err}
}
