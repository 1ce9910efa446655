package server

import (
	"fmt"
	"reflect"

	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/tagly/format"
)

// inputSchema builds a tool input schema from the exported fields of a struct.
func inputSchema(v any) (schema.ToolInputSchema, error) {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return schema.ToolInputSchema{}, fmt.Errorf("expected a struct type, got %s", t.Kind())
	}
	properties, required := structProperties(t)
	return schema.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}, nil
}

func typeSchema(t reflect.Type) map[string]interface{} {
	ret := make(map[string]interface{})
	if t.Kind() == reflect.Pointer {
		ret = typeSchema(t.Elem())
		ret["nullable"] = true
		return ret
	}
	switch t.Kind() {
	case reflect.Bool:
		ret["type"] = "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ret["type"] = "integer"
	case reflect.Float32, reflect.Float64:
		ret["type"] = "number"
	case reflect.Slice, reflect.Array:
		ret["type"] = "array"
		ret["items"] = typeSchema(t.Elem())
	case reflect.Struct:
		ret["type"] = "object"
		properties, required := structProperties(t)
		ret["properties"] = properties
		if len(required) > 0 {
			ret["required"] = required
		}
	default:
		ret["type"] = "string"
	}
	return ret
}

// structProperties returns the properties of t; fields without omitempty that are not pointers are required.
func structProperties(t reflect.Type) (schema.ToolInputSchemaProperties, []string) {
	properties := make(schema.ToolInputSchemaProperties)
	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, _ := format.Parse(field.Tag, "json", "format")
		if tag == nil {
			tag = &format.Tag{}
		}
		if tag.Ignore {
			continue
		}
		name := field.Name
		if tag.Name != "" {
			name = tag.Name
		}
		fieldSchema := typeSchema(field.Type)
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema["description"] = description
		}
		properties[name] = fieldSchema
		if field.Type.Kind() != reflect.Pointer && !tag.Omitempty {
			required = append(required, name)
		}
	}
	return properties, required
}
