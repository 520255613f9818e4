// Package schemajson builds a rowbase.RowLayout directly from a JSON-Schema
// style declaration, for callers migrating off a schema-registry-driven
// system rather than annotating Go structs with `row:"..."` tags.
package schemajson

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lychee-technology/rowbase"
)

// RelationSchema names a foreign-key-shaped relationship to another table.
// BuildLayout does not resolve it — the engine has no cross-table
// relationship concept (spec §1 Non-goals) — but it is carried through so
// callers migrating a relation-aware schema registry don't lose the data.
type RelationSchema struct {
	TargetTable string
	TargetField string
}

// PropertySchema describes one JSON-Schema property.
type PropertySchema struct {
	Name       string
	Type       string // "string", "integer", "number", "boolean", "array", "object"
	Format     string // e.g. "date-time"
	Items      *PropertySchema
	Properties map[string]*PropertySchema
	Required   bool
	Default    any
	Enum       []any
	Relation   *RelationSchema
}

// JSONSchema is a table-shaped schema document: a named, versioned set of
// properties plus the subset that are required.
type JSONSchema struct {
	Name       string
	Version    int
	Properties map[string]*PropertySchema
	Required   []string
	IDField    string // property designated as the identifier, if any
}

var timeType = reflect.TypeOf(time.Time{})

func primitiveDataType(p *PropertySchema) (rowbase.DataType, error) {
	switch p.Type {
	case "string":
		if p.Format == "date-time" {
			return rowbase.DateTime, nil
		}
		return rowbase.String, nil
	case "integer":
		return rowbase.Int64, nil
	case "number":
		return rowbase.Double, nil
	case "boolean":
		return rowbase.Bool, nil
	case "array":
		return rowbase.Binary, nil // best-effort: arrays are not modeled, carried as opaque bytes
	default:
		return rowbase.Unknown, rowbase.NewSchemaError("schemajson: unsupported JSON-Schema type " + p.Type)
	}
}

func valueTypeFor(dt rowbase.DataType) reflect.Type {
	if dt == rowbase.DateTime {
		return timeType
	}
	return reflect.TypeOf(dt.Zero())
}

// BuildLayout maps schema's properties onto rowbase.FieldProperties and
// constructs a RowLayout for tableName. Required properties are NOT NULL
// (the FlagNullable bit is omitted); everything else is nullable. A
// property named schema.IDField carries FlagID.
func BuildLayout(tableName string, schema *JSONSchema) (*rowbase.RowLayout, error) {
	if schema == nil {
		return nil, rowbase.NewSchemaError("schemajson: schema must not be nil")
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]rowbase.FieldProperties, 0, len(schema.Properties))
	for _, name := range names {
		prop := schema.Properties[name]
		dt, err := primitiveDataType(prop)
		if err != nil {
			return nil, err
		}

		var flags rowbase.FieldFlag
		if name == schema.IDField {
			flags |= rowbase.FlagID | rowbase.FlagAutoIncrement
		}
		if _, isRequired := required[name]; !isRequired {
			flags |= rowbase.FlagNullable
		}

		fields = append(fields, rowbase.FieldProperties{
			Name:      name,
			DataType:  dt,
			ValueType: valueTypeFor(dt),
			Flags:     flags,
		})
	}

	return rowbase.CreateUntyped(tableName, fields...)
}

// jsonSchemaDoc mirrors the handful of JSON Schema vocabulary keywords
// BuildLayoutFromJSONSchema cares about. It is decoded from a *jsonschema.Schema's
// own JSON form rather than read off that struct's Go fields directly, so this
// package stays correct against the vocabulary (the stable, spec-defined
// surface) instead of a vendored struct layout.
type jsonSchemaDoc struct {
	Properties map[string]struct {
		Type   string `json:"type"`
		Format string `json:"format"`
	} `json:"properties"`
	Required []string `json:"required"`
}

// BuildLayoutFromJSONSchema builds a RowLayout directly from a *jsonschema.Schema
// document — the same schema type the teacher's entity transformer resolves
// and validates payloads against (its ToAttributes/Validate path feeds raw
// JSON through jsonschema.Schema.Resolve before calling Validate). Here the
// schema is read the opposite direction: its declared properties become
// field layout instead of a validation target. idField names the property
// to mark as the row identifier, if any.
func BuildLayoutFromJSONSchema(tableName, idField string, schema *jsonschema.Schema) (*rowbase.RowLayout, error) {
	if schema == nil {
		return nil, rowbase.NewSchemaError("schemajson: jsonschema.Schema must not be nil")
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, rowbase.NewSchemaError("schemajson: failed to marshal jsonschema.Schema").WithCause(err)
	}
	var doc jsonSchemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, rowbase.NewSchemaError("schemajson: failed to decode jsonschema.Schema document").WithCause(err)
	}

	converted := &JSONSchema{
		Name:       tableName,
		Properties: make(map[string]*PropertySchema, len(doc.Properties)),
		Required:   doc.Required,
		IDField:    idField,
	}
	for name, p := range doc.Properties {
		converted.Properties[name] = &PropertySchema{Name: name, Type: p.Type, Format: p.Format}
	}
	return BuildLayout(tableName, converted)
}
