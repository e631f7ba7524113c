// pkg/engine/schema.go
package engine

// Kind enumerates the value kinds a configuration field can hold.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// FieldSpec describes one field of a module's configuration schema.
type FieldSpec struct {
	Kind        Kind   `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
	// Fields describes the nested schema of an object-kind field whose
	// default should be derived recursively rather than given verbatim.
	Fields Schema `json:"fields,omitempty"`
}

// Schema maps configuration field names to their specs.
type Schema map[string]FieldSpec

// DefaultConfig derives a baseline configuration from a schema: the explicit
// default when present, otherwise a type-appropriate zero value. Object
// fields with a nested schema are derived recursively.
func DefaultConfig(schema Schema) map[string]any {
	defaults := make(map[string]any, len(schema))
	for name, spec := range schema {
		if spec.Default != nil {
			defaults[name] = spec.Default
			continue
		}
		switch spec.Kind {
		case KindObject:
			if len(spec.Fields) > 0 {
				defaults[name] = DefaultConfig(spec.Fields)
			} else {
				defaults[name] = map[string]any{}
			}
		case KindArray:
			defaults[name] = []any{}
		case KindString:
			defaults[name] = ""
		case KindInteger, KindNumber:
			defaults[name] = 0
		case KindBoolean:
			defaults[name] = false
		}
	}
	return defaults
}

// ValidateConfig checks a configuration document against the schema's
// required fields. It returns the name of the first missing field.
func (s Schema) ValidateConfig(cfg map[string]any) (string, bool) {
	for name, spec := range s {
		if !spec.Required {
			continue
		}
		if _, ok := cfg[name]; !ok {
			return name, false
		}
	}
	return "", true
}
