package ir

// Version constants reported by the CLI and the HTTP version endpoint.
const (
	// IRVersion is the model/query IR schema version.
	IRVersion = "1"

	// Version is the semsql release version.
	Version = "0.1.0"
)
