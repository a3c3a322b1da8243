// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Metadata is the fielded document a language model extracts from a
// Markdown text through the extract_metadata function. Field order and JSON
// names match the function's parameter schema.
type Metadata struct {
	Title         string   `json:"Title" yaml:"title"`
	Type          string   `json:"type" yaml:"type"`
	Theme         []string `json:"theme" yaml:"theme"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	Authors       []string `json:"authors" yaml:"authors"`
	Journal       string   `json:"journal" yaml:"journal"`
	Date          string   `json:"date" yaml:"date"`
	Abbreviations []string `json:"abbreviations" yaml:"abbreviations"`
	Definitions   []string `json:"definitions" yaml:"definitions"`
	References    []string `json:"references" yaml:"references"`
}

// Normalize replaces nil list fields with empty lists so that they serialise
// as [] rather than null.
func (m *Metadata) Normalize() {
	for _, list := range []*[]string{
		&m.Theme, &m.Keywords, &m.Authors,
		&m.Abbreviations, &m.Definitions, &m.References,
	} {
		if *list == nil {
			*list = []string{}
		}
	}
}
