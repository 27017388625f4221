package capability

// Type is the primitive type of a schema node.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Schema describes one parameter (or the parameter object itself) precisely
// enough for the model to produce syntactically valid calls: type, required
// fields, defaults, and the exact legal values for constrained fields.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Required    []string
	Enum        []string
	Items       *Schema
	Default     any
}

// ObjectSchema builds the top-level parameter object for a descriptor.
func ObjectSchema(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: properties, Required: required}
}

// StringSchema builds a free-form string parameter.
func StringSchema(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// IntSchema builds an integer parameter with an optional default.
func IntSchema(description string, def any) *Schema {
	return &Schema{Type: TypeInteger, Description: description, Default: def}
}

// EnumSchema builds a string parameter constrained to the given legal values.
func EnumSchema(description string, values []string) *Schema {
	return &Schema{Type: TypeString, Description: description, Enum: values}
}

// Descriptor declares one callable tool: its unique name, what it does, and
// the shape of its arguments. Descriptors are immutable after startup.
type Descriptor struct {
	Name        string
	Description string
	Parameters  *Schema
}
