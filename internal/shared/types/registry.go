package types

// AdapterType is the capability tag declared for an adapter.
type AdapterType string

const (
	AdapterTypeExtraction   AdapterType = "extraction"
	AdapterTypeEnrichment   AdapterType = "enrichment"
	AdapterTypeNotification AdapterType = "notification"
	AdapterTypeLogging      AdapterType = "logging"
	AdapterTypeUnknown      AdapterType = "unknown"
)

// Valid reports whether t is one of the declared adapter types.
func (t AdapterType) Valid() bool {
	switch t {
	case AdapterTypeExtraction, AdapterTypeEnrichment, AdapterTypeNotification, AdapterTypeLogging:
		return true
	default:
		return false
	}
}

// AdapterDefinition declares one adapter known to the registry.
type AdapterDefinition struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Name        string      `json:"name" yaml:"name" toml:"name"`
	Type        AdapterType `json:"type" yaml:"type" toml:"type"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}
