package logging

// Common structured logging field names.
const (
	FieldError   = "error"
	FieldFile    = "file"
	FieldBytes   = "bytes"
	FieldOrigin  = "origin"
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
