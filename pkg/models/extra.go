package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds JSON fields that have no typed counterpart. It also keeps
// explicit empty values (false, "", null, [] or {}) of typed fields whose
// encoding would drop them, so they survive a decode and encode.
type Extra map[string]json.RawMessage

var knownKeysCache sync.Map

// knownKeys returns the set of JSON object keys t decodes, following
// embedded structs the way encoding/json does.
func knownKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]struct{})
	}

	keys := make(map[string]struct{})
	collectKeys(t, keys)
	knownKeysCache.Store(t, keys)
	return keys
}

func collectKeys(t reflect.Type, keys map[string]struct{}) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectKeys(ft, keys)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = struct{}{}
	}
}

// unmarshalWithExtra decodes data into target, which must be a pointer to a
// struct type without its own UnmarshalJSON, and stores the leftover keys.
func unmarshalWithExtra(data []byte, target any, extra *Extra) error {
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	keys := knownKeys(reflect.TypeOf(target).Elem())
	var encoded map[string]json.RawMessage
	for k, raw := range all {
		if _, ok := keys[k]; !ok {
			continue
		}
		if isEmptyJSON(raw) {
			if encoded == nil {
				b, err := json.Marshal(target)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(b, &encoded); err != nil {
					return err
				}
			}
			if _, kept := encoded[k]; !kept {
				continue
			}
		}
		delete(all, k)
	}

	if len(all) == 0 {
		*extra = nil
		return nil
	}
	*extra = all
	return nil
}

// isEmptyJSON reports whether raw is null, false, 0, "", [] or {}.
func isEmptyJSON(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// marshalWithExtra encodes v and merges extra into the resulting object.
// Typed fields win over extra entries with the same key, so an empty value
// kept in extra only comes back while the typed field is still empty.
func marshalWithExtra(v any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}
