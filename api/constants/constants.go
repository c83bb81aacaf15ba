package constants

// Common error messages
const (
	ErrInvalidJSON      = "invalid json or missing fields"
	ErrMethodNotAllowed = "Method Not Allowed"
	ErrMissingFile      = "missing file in multipart form"
	ErrUnsupportedFile  = "unsupported file type; expected .csv, .xlsx or .xls"
	ErrNoRunYet         = "no bridge run has completed yet"
	ErrArtifactNotFound = "requested artifact not found; run the bridge first"
	ErrBridgeRunFailed  = "bridge run failed: "
	ErrConfigLoadFailed = "failed to load configuration: "
	ErrIngestFailed     = "failed to parse input file: "
	ErrExportFailed     = "failed to write outputs: "
	ErrPersistFailed    = "failed to persist run: "
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
	MonthFormat    = "2006-01"
)
