package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"composer/internal/domain"
)

// Canonical returns a deep copy of v in the JSON data model: every number
// becomes float64, maps become map[string]any and slices []any. Props and
// styles are kept in this form so they read back identically from every
// template store and format. Values outside the model ([]byte, time.Time,
// structs) are returned unchanged.
func Canonical(v any) any {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x
	case map[string]any:
		return CanonicalMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Canonical(e)
		}
		return out
	case []byte:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Canonical(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Canonical(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// CanonicalMap is Canonical for a props or styles map. It never returns nil.
func CanonicalMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Canonical(v)
	}
	return out
}

// CanonicalComponents deep-copies comps with canonical props and styles.
func CanonicalComponents(comps []domain.SerializedComponent) []domain.SerializedComponent {
	if comps == nil {
		return nil
	}
	out := make([]domain.SerializedComponent, len(comps))
	for i, c := range comps {
		c.Props = CanonicalMap(c.Props)
		c.Styles = CanonicalMap(c.Styles)
		c.Children = CanonicalComponents(c.Children)
		out[i] = c
	}
	return out
}

// MarshalComponents encodes a component tree for a JSON column.
func MarshalComponents(comps []domain.SerializedComponent) ([]byte, error) {
	if comps == nil {
		comps = []domain.SerializedComponent{}
	}
	return json.Marshal(comps)
}

// UnmarshalComponents decodes a JSON column written by MarshalComponents.
func UnmarshalComponents(data []byte) ([]domain.SerializedComponent, error) {
	var comps []domain.SerializedComponent
	if err := json.Unmarshal(data, &comps); err != nil {
		return nil, fmt.Errorf("decode components: %w", err)
	}
	return CanonicalComponents(comps), nil
}
