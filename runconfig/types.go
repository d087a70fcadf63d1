package runconfig

import "fmt"

// ArchitectureType is the attention/context-handling strategy of the model.
type ArchitectureType string

const (
	// TypeStandard is a fixed-length model truncated at 512 tokens.
	TypeStandard ArchitectureType = "standard"
	// TypeLong is a long-context model fed the full 2048-token input.
	TypeLong ArchitectureType = "long"
	// TypeLongformer is a Longformer-style sparse-attention model.
	TypeLongformer ArchitectureType = "longformer"
	// TypeHierarchical segments the document and aggregates segment encodings.
	TypeHierarchical ArchitectureType = "hierarchical"
)

// ArchitectureTypes lists all supported architecture types.
func ArchitectureTypes() []ArchitectureType {
	return []ArchitectureType{TypeStandard, TypeLong, TypeLongformer, TypeHierarchical}
}

// Validate returns an error if the architecture type is not supported.
func (t ArchitectureType) Validate() error {
	switch t {
	case TypeStandard, TypeLong, TypeLongformer, TypeHierarchical:
		return nil
	}
	return fmt.Errorf("unknown architecture type %q (expected one of %v)", t, ArchitectureTypes())
}

// Language is the ISO 639-1 code of a Swiss judgment language.
type Language string

const (
	LanguageGerman  Language = "de"
	LanguageFrench  Language = "fr"
	LanguageItalian Language = "it"
)

// Languages lists all supported languages.
func Languages() []Language {
	return []Language{LanguageGerman, LanguageFrench, LanguageItalian}
}

// Validate returns an error if the language is not supported.
func (l Language) Validate() error {
	switch l {
	case LanguageGerman, LanguageFrench, LanguageItalian:
		return nil
	}
	return fmt.Errorf("unknown language %q (expected one of %v)", l, Languages())
}
