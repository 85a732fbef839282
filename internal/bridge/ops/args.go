package ops

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/msto63/scenebridge/internal/bridge/coords"
)

// NextToken splits the first token off s. A token is either a run of
// non-space characters or a double-quoted string; quotes are removed.
func NextToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", ""
	}

	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1], s[end+2:]
		}
		return s[1:], ""
	}

	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

// ParseBool accepts the spellings the content tools send
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// namedBool finds key= anywhere in s (case-insensitive) and parses the
// value following it. Missing or unparseable values return def.
func namedBool(s, key string, def bool) bool {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(key)+"=")
	if idx < 0 {
		return def
	}
	value, _ := NextToken(s[idx+len(key)+1:])
	if v, ok := ParseBool(value); ok {
		return v
	}
	return def
}

var relativePattern = regexp.MustCompile(`(?:^|\s)([TtRrSs])=\(([^)]*)\)`)

// ParseRelativeText reads T=(x y z) R=(roll pitch yaw) S=(x y z) groups.
// Components may be separated by spaces or commas.
func ParseRelativeText(s string) (coords.Relative, error) {
	var rel coords.Relative
	for _, match := range relativePattern.FindAllStringSubmatch(s, -1) {
		v, err := parseVector(match[2])
		if err != nil {
			return coords.Relative{}, fmt.Errorf("%s=(%s): %w", match[1], match[2], err)
		}
		switch strings.ToUpper(match[1]) {
		case "T":
			rel.Translation = &v
		case "R":
			rel.Rotation = &v
		case "S":
			rel.Scale = &v
		}
	}
	return rel, nil
}

func parseVector(s string) (coords.Vector, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) != 3 {
		return coords.Vector{}, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	var values [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return coords.Vector{}, err
		}
		values[i] = v
	}
	return coords.Vector{X: values[0], Y: values[1], Z: values[2]}, nil
}

// transformFields are the optional transform members of a JSON request
type transformFields struct {
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Matrix      []float64 `json:"matrix,omitempty"`
}

// Relative converts the JSON fields to a relative transform
func (f transformFields) Relative() (coords.Relative, error) {
	var rel coords.Relative

	if f.Matrix != nil {
		m, err := coords.MatrixFromSlice(f.Matrix)
		if err != nil {
			return rel, err
		}
		rel.Matrix = &m
		return rel, nil
	}

	parts := []struct {
		name   string
		values []float64
		target **coords.Vector
	}{
		{"translation", f.Translation, &rel.Translation},
		{"rotation", f.Rotation, &rel.Rotation},
		{"scale", f.Scale, &rel.Scale},
	}
	for _, p := range parts {
		if p.values == nil {
			continue
		}
		if len(p.values) != 3 {
			return coords.Relative{}, fmt.Errorf("%s needs 3 values, got %d", p.name, len(p.values))
		}
		v := coords.Vector{X: p.values[0], Y: p.values[1], Z: p.values[2]}
		*p.target = &v
	}
	return rel, nil
}

// decodeJSON decodes a request payload, rejecting trailing data
func decodeJSON(payload string, target interface{}) error {
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
