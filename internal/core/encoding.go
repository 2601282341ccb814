package core

import (
	"fmt"

	"github.com/goccy/go-json"
)

const (
	stdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	invalidChar = 0xFF
)

// decodeMap maps both the standard and the URL-safe alphabet, so '-' and '_'
// decode exactly like '+' and '/'.
var decodeMap = func() [256]byte {
	var m [256]byte
	for i := range m {
		m[i] = invalidChar
	}
	for i := 0; i < len(stdAlphabet); i++ {
		m[stdAlphabet[i]] = byte(i)
	}
	m['-'] = 62
	m['_'] = 63
	return m
}()

// DecodeBase64URL decodes a base64url segment. Trailing '=' padding is
// optional but, when present, may only complete the final quantum.
func DecodeBase64URL(segment string) ([]byte, error) {
	end := len(segment)
	for end > 0 && segment[end-1] == '=' {
		end--
	}

	rem := end % 4
	if pad := len(segment) - end; pad > 0 && (rem == 0 || pad > 4-rem) {
		return nil, fmt.Errorf("%w: unexpected padding at offset %d", ErrInvalidBase64, end)
	}
	if rem == 1 {
		return nil, fmt.Errorf("%w: invalid length %d", ErrInvalidBase64, end)
	}

	out := make([]byte, 0, end/4*3+2)
	var quantum [4]byte
	for i := 0; i < end; i += 4 {
		n := min(4, end-i)
		for j := 0; j < n; j++ {
			c := segment[i+j]
			v := decodeMap[c]
			if v == invalidChar {
				return nil, fmt.Errorf("%w: illegal character %q at offset %d", ErrInvalidBase64, c, i+j)
			}
			quantum[j] = v
		}

		out = append(out, quantum[0]<<2|quantum[1]>>4)
		if n > 2 {
			out = append(out, quantum[1]<<4|quantum[2]>>2)
		}
		if n > 3 {
			out = append(out, quantum[2]<<6|quantum[3])
		}
	}

	return out, nil
}

// ParseObject parses data as a JSON document whose top-level value is an object.
func ParseObject(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNotObject, jsonKind(v))
	}
	return obj, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
