package openapi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Document represents a minimal OpenAPI document.
type Document struct {
	OpenAPI    string         `json:"openapi"`
	Info       Info           `json:"info"`
	Paths      map[string]any `json:"paths,omitempty"`
	Components Components     `json:"components,omitempty"`
	Extensions map[string]any `json:"-"`
}

// Info captures OpenAPI metadata.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Components aggregates schema components.
type Components struct {
	Schemas map[string]any `json:"schemas,omitempty"`
}

// Operation describes one method on a path.
type Operation struct {
	Summary string
	// Request names the component schema of the JSON body, if any.
	Request string
	// Response names the component schema of a successful response.
	Response string
	// List marks the response as an array of Response.
	List   bool
	Status int
}

// NewDocument constructs a minimal OpenAPI document.
func NewDocument(title, version string) *Document {
	return &Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:   title,
			Version: version,
		},
		Paths:      map[string]any{},
		Components: Components{Schemas: map[string]any{}},
		Extensions: map[string]any{},
	}
}

// AddSchema registers a component schema.
func (d *Document) AddSchema(name string, schema map[string]any) {
	if d == nil || name == "" || schema == nil {
		return
	}
	if d.Components.Schemas == nil {
		d.Components.Schemas = map[string]any{}
	}
	d.Components.Schemas[name] = schema
}

// AddOperation adds method on path. Path parameters written as {name} are
// declared as string parameters.
func (d *Document) AddOperation(method, path string, op Operation) {
	if d == nil || method == "" || path == "" {
		return
	}
	if d.Paths == nil {
		d.Paths = map[string]any{}
	}
	item, _ := d.Paths[path].(map[string]any)
	if item == nil {
		item = map[string]any{}
		d.Paths[path] = item
	}

	status := op.Status
	if status == 0 {
		status = 200
	}
	response := map[string]any{"description": op.Summary}
	if op.Response != "" {
		schema := ref(op.Response)
		if op.List {
			schema = map[string]any{"type": "array", "items": ref(op.Response)}
		}
		response["content"] = jsonContent(schema)
	}
	operation := map[string]any{
		"summary":   op.Summary,
		"responses": map[string]any{strconv.Itoa(status): response},
	}
	if params := pathParams(path); len(params) > 0 {
		operation["parameters"] = params
	}
	if op.Request != "" {
		operation["requestBody"] = map[string]any{
			"required": true,
			"content":  jsonContent(ref(op.Request)),
		}
	}
	item[strings.ToLower(method)] = operation
}

// SetExtension sets a vendor extension on the document.
func (d *Document) SetExtension(key string, value any) {
	if d == nil || key == "" {
		return
	}
	if d.Extensions == nil {
		d.Extensions = map[string]any{}
	}
	d.Extensions[key] = value
}

// AsMap returns the document as a map including extensions.
func (d *Document) AsMap() map[string]any {
	if d == nil {
		return nil
	}
	out := map[string]any{
		"openapi": d.OpenAPI,
		"info": map[string]any{
			"title":   d.Info.Title,
			"version": d.Info.Version,
		},
	}
	if len(d.Paths) > 0 {
		out["paths"] = d.Paths
	} else {
		out["paths"] = map[string]any{}
	}
	if len(d.Components.Schemas) > 0 {
		out["components"] = map[string]any{
			"schemas": d.Components.Schemas,
		}
	}
	for key, value := range d.Extensions {
		out[key] = value
	}
	return out
}

// MarshalJSON encodes AsMap so extensions land at the top level.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.AsMap())
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]any) map[string]any {
	return map[string]any{"application/json": map[string]any{"schema": schema}}
}

func pathParams(path string) []any {
	var params []any
	for _, segment := range strings.Split(path, "/") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			params = append(params, map[string]any{
				"name":     strings.Trim(segment, "{}"),
				"in":       "path",
				"required": true,
				"schema":   map[string]any{"type": "string"},
			})
		}
	}
	return params
}

