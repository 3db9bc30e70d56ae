package http

import (
	"maps"
	"net/http"
	"slices"

	"github.com/goliatone/go-feincms/internal/openapi"
)

var (
	uuidSchema    = map[string]any{"type": "string", "format": "uuid"}
	stringSchema  = map[string]any{"type": "string"}
	integerSchema = map[string]any{"type": "integer"}
	booleanSchema = map[string]any{"type": "boolean"}
	stringMap     = map[string]any{"type": "object", "additionalProperties": stringSchema}
)

func pageSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                  uuidSchema,
			"parent_id":           uuidSchema,
			"position":            integerSchema,
			"title":               stringSchema,
			"slug":                stringSchema,
			"path":                stringSchema,
			"static_path":         booleanSchema,
			"is_active":           booleanSchema,
			"page_type":           stringSchema,
			"app_namespace":       stringSchema,
			"app_options":         stringMap,
			"language_code":       stringSchema,
			"translation_of_id":   uuidSchema,
			"menu":                stringSchema,
			"redirect_to_url":     stringSchema,
			"redirect_to_page_id": uuidSchema,
		},
		"required": []any{"id", "title", "path", "page_type", "language_code"},
	}
}

func contentItemSchema(payloadTypes []string) map[string]any {
	typeSchema := map[string]any{"type": "string"}
	if len(payloadTypes) > 0 {
		values := make([]any, 0, len(payloadTypes))
		for _, name := range payloadTypes {
			values = append(values, name)
		}
		typeSchema["enum"] = values
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":       uuidSchema,
			"page_id":  uuidSchema,
			"region":   stringSchema,
			"ordering": integerSchema,
			"type":     typeSchema,
			"section":  stringSchema,
			"payload":  map[string]any{"type": "object"},
		},
		"required": []any{"region", "type"},
	}
}

// Document describes the admin endpoints. Registered plugin payload schemas
// are published as "payload.<type>" components.
func (api *AdminAPI) Document() *openapi.Document {
	doc := openapi.NewDocument("feincms admin", "1.0.0")

	var payloadTypes []string
	if api.schemas != nil {
		sources := api.schemas.Sources()
		payloadTypes = slices.Sorted(maps.Keys(sources))
		for _, name := range payloadTypes {
			doc.AddSchema("payload."+name, sources[name])
		}
	}
	doc.AddSchema("Page", pageSchema())
	doc.AddSchema("ContentItem", contentItemSchema(payloadTypes))
	doc.AddSchema("MoveRequest", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_id": uuidSchema,
			"position":  map[string]any{"type": "string", "enum": []any{"first-child", "last-child", "left", "right"}},
		},
		"required": []any{"target_id", "position"},
	})
	doc.AddSchema("CloneRequest", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_id":       uuidSchema,
			"fields":          map[string]any{"type": "array", "items": stringSchema},
			"replace_content": booleanSchema,
		},
		"required": []any{"target_id"},
	})
	doc.AddSchema("PageType", map[string]any{"type": "object"})

	base := joinPath(api.basePath, "")
	pagesRoot := joinPath(base, "pages")
	page := pagesRoot + "/{id}"
	doc.AddOperation("GET", pagesRoot, openapi.Operation{Summary: "List pages in tree order", Response: "Page", List: true})
	doc.AddOperation("POST", pagesRoot, openapi.Operation{Summary: "Create a page", Request: "Page", Response: "Page", Status: http.StatusCreated})
	doc.AddOperation("GET", page, openapi.Operation{Summary: "Get a page", Response: "Page"})
	doc.AddOperation("PUT", page, openapi.Operation{Summary: "Update a page", Request: "Page", Response: "Page"})
	doc.AddOperation("DELETE", page, openapi.Operation{Summary: "Delete a page and its subtree", Status: http.StatusNoContent})
	doc.AddOperation("GET", page+"/children", openapi.Operation{Summary: "List child pages", Response: "Page", List: true})
	doc.AddOperation("GET", page+"/ancestors", openapi.Operation{Summary: "List ancestors, root first", Response: "Page", List: true})
	doc.AddOperation("GET", page+"/translations", openapi.Operation{Summary: "List translations", Response: "Page", List: true})
	doc.AddOperation("POST", page+"/move", openapi.Operation{Summary: "Move a page", Request: "MoveRequest", Response: "Page"})
	doc.AddOperation("POST", page+"/clone", openapi.Operation{Summary: "Clone fields and content onto another page", Request: "CloneRequest", Response: "Page"})
	doc.AddOperation("GET", page+"/content", openapi.Operation{Summary: "List content items of a page", Response: "ContentItem", List: true})
	doc.AddOperation("POST", page+"/content", openapi.Operation{Summary: "Add a content item", Request: "ContentItem", Response: "ContentItem", Status: http.StatusCreated})
	item := joinPath(base, "content") + "/{id}"
	doc.AddOperation("GET", item, openapi.Operation{Summary: "Get a content item", Response: "ContentItem"})
	doc.AddOperation("PUT", item, openapi.Operation{Summary: "Update a content item", Request: "ContentItem", Response: "ContentItem"})
	doc.AddOperation("DELETE", item, openapi.Operation{Summary: "Delete a content item", Status: http.StatusNoContent})
	doc.AddOperation("GET", joinPath(base, "types"), openapi.Operation{Summary: "List page types", Response: "PageType", List: true})
	return doc
}

func (api *AdminAPI) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.Document())
}
