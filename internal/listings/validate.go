package listings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// listingSchemaJSON is the wire contract for a single ingested listing.
// It guards the fields search actually depends on; presentation fields
// (photos, tags, excerpt) are optional.
const listingSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["id", "address", "city", "state", "price", "propertyType"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"address": {"type": "string", "minLength": 1},
		"city": {"type": "string", "minLength": 1},
		"state": {"type": "string", "minLength": 2},
		"zip": {"type": "string"},
		"price": {"type": "integer", "minimum": 0},
		"beds": {"type": "integer", "minimum": 0},
		"baths": {"type": "integer", "minimum": 0},
		"sqft": {"type": "integer", "minimum": 0},
		"lotSize": {"type": "integer", "minimum": 0},
		"yearBuilt": {"type": "integer", "minimum": 0},
		"propertyType": {
			"type": "string",
			"enum": ["single_family", "condo", "townhome", "multi_family", "land"]
		},
		"daysOnMarket": {"type": "integer", "minimum": 0},
		"status": {"type": "string"},
		"photos": {"type": "array", "items": {"type": "string"}},
		"heroPhoto": {"type": "string"},
		"listingUrl": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}},
		"excerpt": {"type": "string"}
	}
}`

var listingSchema = mustCompileListingSchema()

func mustCompileListingSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("listing.json", strings.NewReader(listingSchemaJSON)); err != nil {
		panic(fmt.Sprintf("adding listing schema resource: %v", err))
	}
	schema, err := compiler.Compile("listing.json")
	if err != nil {
		panic(fmt.Sprintf("compiling listing schema: %v", err))
	}
	return schema
}

// ValidateRaw checks a raw JSON listing against the wire contract.
// A failure means the source document is malformed, not merely empty.
func ValidateRaw(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return &ShapeError{Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if err := listingSchema.Validate(v); err != nil {
		id := ""
		if m, ok := v.(map[string]any); ok {
			id, _ = m["id"].(string)
		}
		return &ShapeError{ID: id, Reason: err.Error()}
	}
	return nil
}
