package plugins

var payloadSchemas = map[string]map[string]any{
	TypeRichText: {
		"type":       "object",
		"properties": map[string]any{"html": map[string]any{"type": "string"}},
		"required":   []any{"html"},
	},
	TypeHTML: {
		"type":       "object",
		"properties": map[string]any{"html": map[string]any{"type": "string"}},
		"required":   []any{"html"},
	},
	TypeImage: {
		"type": "object",
		"properties": map[string]any{
			"src":     map[string]any{"type": "string", "minLength": 1},
			"alt":     map[string]any{"type": "string"},
			"caption": map[string]any{"type": "string"},
			"width":   map[string]any{"type": "integer", "minimum": 1},
			"height":  map[string]any{"type": "integer", "minimum": 1},
		},
		"required":             []any{"src"},
		"additionalProperties": false,
	},
	TypeExternal: {
		"type": "object",
		"properties": map[string]any{
			"url":   map[string]any{"type": "string", "pattern": "^https?://"},
			"title": map[string]any{"type": "string"},
		},
		"required": []any{"url"},
	},
	TypeSnippet: {
		"type":       "object",
		"properties": map[string]any{"template": map[string]any{"type": "string", "minLength": 1}},
		"required":   []any{"template"},
	},
	TypeMarkdown: {
		"type":       "object",
		"properties": map[string]any{"markdown": map[string]any{"type": "string"}},
		"required":   []any{"markdown"},
	},
}
