// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import "google.golang.org/genai"

const (
	// FunctionName is the single function the model is instructed to call.
	FunctionName = "extract_metadata"

	systemPrompt = "Extract metadata from a given text formatted in Markdown."
)

// field describes one property of the extract_metadata parameters. List
// fields carry a description for their items as well.
type field struct {
	name     string
	list     bool
	desc     string
	itemDesc string
}

// fields lists the parameters in the order they appear in types.Metadata.
var fields = []field{
	{name: "Title", desc: "Title of the documents"},
	{name: "type", desc: "Type of content (e.g., guideline, interview)"},
	{name: "theme", list: true, desc: "Theme of the document, multiple sub-entries possible", itemDesc: "A theme related to the document"},
	{name: "keywords", list: true, desc: "Keywords related to the document", itemDesc: "Keyword associated with the document"},
	{name: "authors", list: true, desc: "List of authors of the document", itemDesc: "Name of an author"},
	{name: "journal", desc: "Journal name if applicable"},
	{name: "date", desc: "Date of publication in YYYY-MM-DD format"},
	{name: "abbreviations", list: true, desc: "Abbreviations used in the document", itemDesc: "A single abbreviation used in the document"},
	{name: "definitions", list: true, desc: "Definitions described in the document", itemDesc: "A definition provided in the document"},
	{name: "references", list: true, desc: "ALL References cited in the document", itemDesc: "ALL References cited in the document"},
}

// requiredFields returns every parameter name; all of them are required.
func requiredFields() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// JSONSchema returns the extract_metadata parameter schema as a JSON Schema
// object, closed to additional properties.
func JSONSchema() map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.list {
			props[f.name] = map[string]any{
				"type":        "array",
				"description": f.desc,
				"items": map[string]any{
					"type":        "string",
					"description": f.itemDesc,
				},
			}
			continue
		}
		props[f.name] = map[string]any{
			"type":        "string",
			"description": f.desc,
		}
	}
	return map[string]any{
		"type":                 "object",
		"required":             requiredFields(),
		"properties":           props,
		"additionalProperties": false,
	}
}

// geminiSchema expresses the same parameters as a genai.Schema.
func geminiSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(fields))
	for _, f := range fields {
		if f.list {
			props[f.name] = &genai.Schema{
				Type:        genai.TypeArray,
				Description: f.desc,
				Items: &genai.Schema{
					Type:        genai.TypeString,
					Description: f.itemDesc,
				},
			}
			continue
		}
		props[f.name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: f.desc,
		}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   requiredFields(),
	}
}
