package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("validation: payload schema invalid")
	ErrSchemaValidation = errors.New("validation: payload does not match schema")
	ErrPluginTypeEmpty  = errors.New("validation: plugin type is required")
)

// Issue is one schema violation.
type Issue struct {
	Location string
	Message  string
}

// PayloadError lists the schema violations of a plugin payload.
type PayloadError struct {
	PluginType string
	Issues     []Issue
}

func (e *PayloadError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, location+": "+issue.Message)
	}
	return fmt.Sprintf("%s payload: %s", e.PluginType, strings.Join(parts, "; "))
}

func (e *PayloadError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues returns the violations carried by err.
func Issues(err error) []Issue {
	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		return payloadErr.Issues
	}
	if err == nil {
		return nil
	}
	return []Issue{{Message: err.Error()}}
}

// Schemas holds compiled JSON schemas per plugin type. Schemas compile once
// at registration.
type Schemas struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
	sources  map[string]map[string]any
}

// NewSchemas creates an empty schema set.
func NewSchemas() *Schemas {
	return &Schemas{
		compiled: make(map[string]*jsonschema.Schema),
		sources:  make(map[string]map[string]any),
	}
}

// Register compiles schema for pluginType, replacing an earlier schema.
func (s *Schemas) Register(pluginType string, schema map[string]any) error {
	pluginType = strings.TrimSpace(pluginType)
	if pluginType == "" {
		return ErrPluginTypeEmpty
	}
	compiled, err := compile(pluginType, schema)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, pluginType, err)
	}
	s.mu.Lock()
	s.compiled[pluginType] = compiled
	s.sources[pluginType] = maps.Clone(schema)
	s.mu.Unlock()
	return nil
}

// Sources returns the registered schema documents keyed by plugin type.
func (s *Schemas) Sources() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]any, len(s.sources))
	for key, schema := range s.sources {
		out[key] = maps.Clone(schema)
	}
	return out
}

// Has reports whether pluginType has a schema.
func (s *Schemas) Has(pluginType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.compiled[pluginType]
	return ok
}

// Validate checks payload against the schema of pluginType. Types without
// a schema accept any payload.
func (s *Schemas) Validate(pluginType string, payload map[string]any) error {
	s.mu.RLock()
	compiled, ok := s.compiled[pluginType]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	document, err := normalize(payload)
	if err != nil {
		return &PayloadError{PluginType: pluginType, Issues: []Issue{{Message: err.Error()}}}
	}
	if err := compiled.Validate(document); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &PayloadError{PluginType: pluginType, Issues: leafIssues(verr)}
		}
		return &PayloadError{PluginType: pluginType, Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

func compile(name string, schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	url := name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// normalize round-trips the payload through JSON so Go values reach the
// validator in their decoded form.
func normalize(payload map[string]any) (any, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var document any
	if err := json.Unmarshal(encoded, &document); err != nil {
		return nil, err
	}
	return document, nil
}

func leafIssues(err *jsonschema.ValidationError) []Issue {
	if len(err.Causes) == 0 {
		return []Issue{{Location: err.InstanceLocation, Message: err.Message}}
	}
	var out []Issue
	for _, cause := range err.Causes {
		out = append(out, leafIssues(cause)...)
	}
	return out
}
