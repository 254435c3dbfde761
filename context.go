package goji

import (
	"fmt"
	"reflect"
	"strings"
)

// Context is the data a template is rendered against. Expressions see its keys as
// top-level identifiers.
type Context map[string]any

// IterationContext describes the current position inside a g-each loop. Expressions in a
// loop body see it as iter.i, iter.odd and iter.even.
type IterationContext struct {
	I    int
	Odd  bool
	Even bool
}

func newIteration(i int) IterationContext {
	return IterationContext{I: i, Odd: i%2 != 0, Even: i%2 == 0}
}

func (it IterationContext) env() map[string]any {
	return map[string]any{"i": it.I, "odd": it.Odd, "even": it.Even}
}

// with returns a copy of c with name bound to value.
func (c Context) with(name string, value any) Context {
	scoped := make(Context, len(c)+1)
	for k, v := range c {
		scoped[k] = v
	}
	scoped[name] = value
	return scoped
}

// toContext converts render data into a Context.
// Structs contribute their exported fields under both the json tag name and the field name.
func toContext(data any) (Context, error) {
	switch d := data.(type) {
	case nil:
		return Context{}, nil
	case Context:
		return d, nil
	case map[string]any:
		return Context(d), nil
	}

	val := reflect.ValueOf(data)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return Context{}, nil
		}
		val = val.Elem()
	}

	ctx := make(Context)
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)

			// Skip unexported fields
			if !field.IsExported() {
				continue
			}

			// Use the json tag name if available, otherwise use field name
			fieldName := field.Name
			if jsonTag := field.Tag.Get("json"); jsonTag != "" {
				if commaIdx := strings.Index(jsonTag, ","); commaIdx > 0 {
					fieldName = jsonTag[:commaIdx]
				} else if jsonTag != "-" && commaIdx < 0 {
					fieldName = jsonTag
				}
			}
			ctx[fieldName] = val.Field(i).Interface()
			ctx[field.Name] = val.Field(i).Interface()
		}
	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("goji: render data map must have string keys, got %s", val.Type())
		}
		for _, key := range val.MapKeys() {
			ctx[key.String()] = val.MapIndex(key).Interface()
		}
	default:
		return nil, fmt.Errorf("goji: render data must be a map or struct, got %T", data)
	}
	return ctx, nil
}
