package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// Registry maps adapter ids to their definitions
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]types.AdapterDefinition
}

// New creates a registry holding defs
func New(defs ...types.AdapterDefinition) (*Registry, error) {
	r := &Registry{adapters: make(map[string]types.AdapterDefinition, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns the registry of built-in adapters
func Default() *Registry {
	r, err := New(builtin...)
	if err != nil {
		panic(fmt.Sprintf("registry: invalid built-in adapters: %v", err))
	}
	return r
}

var builtin = []types.AdapterDefinition{
	{ID: "pdf-extractor", Name: "PDF Extractor", Type: types.AdapterTypeExtraction, Description: "Extracts text and tables from PDF documents"},
	{ID: "docx-extractor", Name: "DOCX Extractor", Type: types.AdapterTypeExtraction, Description: "Extracts text from Word documents"},
	{ID: "web-enricher", Name: "Web Enricher", Type: types.AdapterTypeEnrichment, Description: "Adds web search results to the prompt"},
	{ID: "crm-enricher", Name: "CRM Enricher", Type: types.AdapterTypeEnrichment, Description: "Adds customer records to the context"},
	{ID: "slack-notifier", Name: "Slack Notifier", Type: types.AdapterTypeNotification, Description: "Posts the answer to a Slack channel"},
	{ID: "email-notifier", Name: "Email Notifier", Type: types.AdapterTypeNotification, Description: "Emails the answer to the user"},
	{ID: "audit-logger", Name: "Audit Logger", Type: types.AdapterTypeLogging, Description: "Writes the exchange to the audit log"},
}

// Register adds an adapter definition
func (r *Registry) Register(def types.AdapterDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("adapter ID cannot be empty")
	}
	if !def.Type.Valid() {
		return fmt.Errorf("adapter %s: invalid type %q", def.ID, def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[def.ID]; exists {
		return fmt.Errorf("adapter %s already registered", def.ID)
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	r.adapters[def.ID] = def
	return nil
}

// Get retrieves an adapter definition by ID
func (r *Registry) Get(id string) (types.AdapterDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.adapters[id]
	return def, ok
}

// IsValidAdapterID reports whether id is registered
func (r *Registry) IsValidAdapterID(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// AdapterType returns the declared type, or AdapterTypeUnknown
func (r *Registry) AdapterType(id string) types.AdapterType {
	def, ok := r.Get(id)
	if !ok {
		return types.AdapterTypeUnknown
	}
	return def.Type
}

// List returns adapters sorted by ID, optionally filtered by type
func (r *Registry) List(adapterType *types.AdapterType) []types.AdapterDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.AdapterDefinition, 0, len(r.adapters))
	for _, def := range r.adapters {
		if adapterType == nil || def.Type == *adapterType {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of registered adapters
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
