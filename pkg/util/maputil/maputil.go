package maputil

import (
	"fmt"
	"reflect"
)

func FlattenAsString(m map[string]interface{}) string {
	result := ""

	for k, v := range Flatten(m) {
		result = fmt.Sprintf("%s %s=%s", result, k, v)
	}

	return result
}

func Flatten(input map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{}

	for k, valOrMap := range input {
		if m, isMap := valOrMap.(map[string]interface{}); isMap {
			for k2, v2 := range Flatten(m) {
				result[fmt.Sprintf("%s.%s", k, k2)] = v2
			}
		} else {
			result[k] = valOrMap
		}
	}

	return result
}

func CastKeysToStrings(m map[interface{}]interface{}) (map[string]interface{}, error) {
	r := map[string]interface{}{}
	for k, v := range m {
		str, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("Unexpected type %s for key %s", reflect.TypeOf(k), k)
		}
		r[str] = v
	}
	return r, nil
}

// RecursivelyStringifyKeys helps converting any map object into a go-jsonscheme-friendly map
func RecursivelyStringifyKeys(m interface{}) (map[string]interface{}, error) {
	mm, err := _recursivelyStringifyKeys(m)
	if err != nil {
		return nil, err
	}
	if ms, ok := mm.(map[string]interface{}); ok {
		return ms, nil
	}
	return nil, fmt.Errorf("bug: unexpected type of m: %T", mm)
}

func _recursivelyStringifyKeys(m interface{}) (interface{}, error) {
	switch src := m.(type) {
	case map[string]interface{}:
		dst := map[string]interface{}{}
		for k, v1 := range src {
			v2, err := _recursivelyStringifyKeys(v1)
			if err != nil {
				return nil, err
			}
			dst[k] = v2
		}
		return dst, nil
	case []interface{}:
		dst := make([]interface{}, len(src))
		for i, v1 := range src {
			v2, err := _recursivelyStringifyKeys(v1)
			if err != nil {
				return nil, err
			}
			dst[i] = v2
		}
		return dst, nil
	case map[interface{}]interface{}:
		dst := map[string]interface{}{}
		for k1, v1 := range src {
			k2, ok := k1.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected type of key \"%v\": %T", k1, k1)
			}
			v2, err := _recursivelyStringifyKeys(v1)
			if err != nil {
				return nil, err
			}
			dst[k2] = v2
		}
		return dst, nil
	}
	return m, nil
}
