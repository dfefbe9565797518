package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Raw is one row of a scraping backend dataset.
type Raw = map[string]any

// Lookup resolves a dotted path ("stats.followerCount") through nested objects.
func Lookup(m Raw, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	cur := any(m)
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// FirstString returns the first non-empty string found under paths.
func FirstString(m Raw, paths ...string) string {
	for _, p := range paths {
		v, ok := Lookup(m, p)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		case json.Number:
			return s.String()
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(s, 10)
		case int:
			return strconv.Itoa(s)
		}
	}
	return ""
}

// FirstCount returns the first counter present under paths, parsed with ParseCount.
func FirstCount(m Raw, paths ...string) int64 {
	for _, p := range paths {
		v, ok := Lookup(m, p)
		if !ok {
			continue
		}
		switch v.(type) {
		case string, float64, float32, int, int64, int32, json.Number:
			return ParseCount(v)
		}
	}
	return 0
}

// FirstBool returns true if any path holds true (or "true").
func FirstBool(m Raw, paths ...string) bool {
	for _, p := range paths {
		v, ok := Lookup(m, p)
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			if b {
				return true
			}
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil && parsed {
				return true
			}
		}
	}
	return false
}

// FirstMap returns the first nested object found under paths.
func FirstMap(m Raw, paths ...string) (Raw, string) {
	for _, p := range paths {
		v, ok := Lookup(m, p)
		if !ok {
			continue
		}
		if obj, ok := v.(map[string]any); ok {
			return obj, p
		}
	}
	return nil, ""
}

// FirstRows returns the objects of the first array found under paths. Non-object entries are dropped.
func FirstRows(m Raw, paths ...string) ([]Raw, string) {
	for _, p := range paths {
		v, ok := Lookup(m, p)
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		rows := make([]Raw, 0, len(arr))
		for _, el := range arr {
			if obj, ok := el.(map[string]any); ok {
				rows = append(rows, obj)
			}
		}
		return rows, p
	}
	return nil, ""
}

// Strings collects string values of an array under path. Object entries contribute their field
// named by key, when key is set.
func Strings(m Raw, path, key string) []string {
	v, ok := Lookup(m, path)
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []any:
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			switch e := el.(type) {
			case string:
				if e != "" {
					out = append(out, e)
				}
			case map[string]any:
				if key != "" {
					if s := FirstString(e, key); s != "" {
						out = append(out, s)
					}
				}
			}
		}
		return out
	case string:
		if arr != "" {
			return []string{arr}
		}
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	time.RubyDate, // Twitter legacy created_at: "Mon Jan 02 15:04:05 -0700 2006"
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2006",
}

// FirstTime returns the first timestamp found under paths. Strings are tried against the known
// layouts; numbers are treated as Unix seconds, or milliseconds when large.
func FirstTime(m Raw, paths ...string) time.Time {
	for _, p := range paths {
		v, ok := Lookup(m, p)
		if !ok {
			continue
		}
		if t, err := ParseTime(v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func ParseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty time")
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return unixTime(n), nil
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	case float64:
		return unixTime(int64(t)), nil
	case int64:
		return unixTime(t), nil
	case int:
		return unixTime(int64(t)), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return unixTime(n), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time type %T", v)
	}
}

func unixTime(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
