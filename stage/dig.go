package stage

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/pipeline"
)

// Dig yields the value stored under key in each map.
func Dig[M ~map[string]V, V any](p *pipeline.Pipeline[M], key string) *pipeline.Pipeline[V] {
	return pipeline.Map(p, func(_ context.Context, m M) (V, error) {
		v, ok := m[key]
		if !ok {
			var zero V
			return zero, errors.UnknownField(key)
		}
		return v, nil
	})
}

// DigField yields the exported struct field called name from each item.
// T must be a struct or a pointer to one, and the field must be assignable
// to V; both are checked before any item is pulled.
func DigField[T, V any](p *pipeline.Pipeline[T], name string) (*pipeline.Pipeline[V], error) {
	t := reflect.TypeFor[T]()
	indirect := t.Kind() == reflect.Pointer
	if indirect {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Misconfiguration("item type", fmt.Sprintf("%s is not a struct", t))
	}
	field, ok := t.FieldByName(name)
	if !ok || !field.IsExported() {
		return nil, errors.UnknownField(name)
	}
	want := reflect.TypeFor[V]()
	if !field.Type.AssignableTo(want) {
		return nil, errors.Misconfiguration("field "+name, fmt.Sprintf("%s is not assignable to %s", field.Type, want))
	}

	return pipeline.Map(p, func(_ context.Context, item T) (V, error) {
		var zero V
		rv := reflect.ValueOf(&item).Elem()
		if indirect {
			if rv.IsNil() {
				return zero, errors.UnknownField(name).WithDetail("reason", "nil item")
			}
			rv = rv.Elem()
		}
		fv, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			return zero, errors.UnknownField(name).WithCause(err)
		}
		var out V
		reflect.ValueOf(&out).Elem().Set(fv)
		return out, nil
	}), nil
}
