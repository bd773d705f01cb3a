package apply

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// mergeJSON overlays the bundle document onto an existing JSON file.
// Bundle keys win on conflict; unrelated user keys survive. String arrays
// are unioned (existing order first) so extension recommendation lists grow
// instead of losing user entries. The changed flag is false when the
// existing file already contains everything the bundle wants.
func mergeJSON(existing, incoming []byte) ([]byte, bool, error) {
	var dst, src any
	if err := json.Unmarshal(existing, &dst); err != nil {
		return nil, false, fmt.Errorf("parse existing JSON: %w", err)
	}
	if err := json.Unmarshal(incoming, &src); err != nil {
		return nil, false, fmt.Errorf("parse bundle JSON: %w", err)
	}

	merged := mergeValue(dst, src)
	if reflect.DeepEqual(merged, dst) {
		return nil, false, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(merged); err != nil {
		return nil, false, fmt.Errorf("encode merged JSON: %w", err)
	}
	return buf.Bytes(), true, nil
}

func mergeValue(dst, src any) any {
	dstMap, dstIsMap := dst.(map[string]any)
	srcMap, srcIsMap := src.(map[string]any)
	if dstIsMap && srcIsMap {
		out := make(map[string]any, len(dstMap)+len(srcMap))
		for k, v := range dstMap {
			out[k] = v
		}
		for k, v := range srcMap {
			if existing, ok := out[k]; ok {
				out[k] = mergeValue(existing, v)
			} else {
				out[k] = v
			}
		}
		return out
	}

	if union, ok := mergeStringArrays(dst, src); ok {
		return union
	}

	return src
}

func mergeStringArrays(dst, src any) ([]any, bool) {
	dstArr, ok := stringArray(dst)
	if !ok {
		return nil, false
	}
	srcArr, ok := stringArray(src)
	if !ok {
		return nil, false
	}

	seen := make(map[string]struct{}, len(dstArr))
	out := make([]any, 0, len(dstArr)+len(srcArr))
	for _, s := range dstArr {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range srcArr {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, true
}

func stringArray(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
