package txlog

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Redacted replaces any value that must never reach a log sink.
const Redacted = "***SENSITIVE_DATA_HIDDEN***"

const (
	maxDepth       = 3
	maxStringLen   = 100
	maxTopKeys     = 5
	maxNestedKeys  = 3
	maxTopItems    = 2
	maxNestedItems = 3
)

var (
	sensitiveKeyPattern = regexp.MustCompile(`(?i)password|contraseña|token|secret`)
	// Compact JWS shape: three dot-separated base64url segments. Bearer
	// tokens show up as bare strings in wrapped results, so they are
	// redacted by value, not only by key.
	jwtPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]*$`)
)

var safeHeaders = []string{
	"Content-Type", "User-Agent", "Accept", "Host",
	"Origin", "Referer", "Content-Length",
}

var sensitiveHeaders = []string{
	"Authorization", "Cookie", "X-Api-Key", "Password",
	"Token", "Secret", "Credentials", "Api-Key",
}

// Sanitize prepares an arbitrary value for logging: secret-bearing keys
// and token-shaped strings are redacted, long strings and large
// collections are truncated, recursion is depth-capped, and HTTP
// request/response objects collapse to a small safe summary.
func Sanitize(v any) any {
	return sanitizeValue(v, 0)
}

func sanitizeValue(v any, depth int) any {
	if v == nil {
		return nil
	}

	switch t := v.(type) {
	case *http.Request:
		return requestSummary(t)
	case *http.Response:
		return responseSummary(t)
	case error:
		return map[string]any{"message": t.Error()}
	case time.Time:
		return t.Format(time.RFC3339)
	case string:
		return sanitizeString(t)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		return sanitizeFields(mapFields(rv), depth)
	case reflect.Struct:
		return sanitizeFields(structFields(rv), depth)
	case reflect.Slice, reflect.Array:
		return sanitizeSlice(rv, depth)
	case reflect.String:
		return sanitizeString(rv.String())
	case reflect.Func, reflect.Chan:
		return fmt.Sprintf("[%s]", rv.Kind())
	default:
		return rv.Interface()
	}
}

func sanitizeString(s string) any {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "password") || strings.Contains(lower, "contraseña") {
		return Redacted
	}
	if jwtPattern.MatchString(s) {
		return Redacted
	}
	if len(s) > maxStringLen {
		return s[:maxStringLen] + "..."
	}
	return s
}

func sanitizeSlice(rv reflect.Value, depth int) any {
	if depth >= maxDepth {
		return "[nested object]"
	}
	limit := maxNestedItems
	if depth == 0 {
		limit = maxTopItems
	}
	if rv.Len() > limit {
		return fmt.Sprintf("[array with %d elements]", rv.Len())
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, sanitizeValue(rv.Index(i).Interface(), depth+1))
	}
	return out
}

type field struct {
	name  string
	value any
}

func mapFields(rv reflect.Value) []field {
	fields := make([]field, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		fields = append(fields, field{
			name:  fmt.Sprintf("%v", k.Interface()),
			value: rv.MapIndex(k).Interface(),
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })
	return fields
}

func structFields(rv reflect.Value) []field {
	t := rv.Type()
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		fields = append(fields, field{name: name, value: rv.Field(i).Interface()})
	}
	return fields
}

func sanitizeFields(fields []field, depth int) any {
	if depth >= maxDepth {
		return "[nested object]"
	}
	limit := maxNestedKeys
	if depth == 0 {
		limit = maxTopKeys
	}
	out := make(map[string]any, limit)
	kept := 0
	for _, f := range fields {
		if kept == limit {
			out["..."] = fmt.Sprintf("and %d more fields", len(fields)-kept)
			break
		}
		if sensitiveKeyPattern.MatchString(f.name) {
			out[f.name] = Redacted
		} else {
			out[f.name] = sanitizeValue(f.value, depth+1)
		}
		kept++
	}
	return out
}

func requestSummary(r *http.Request) any {
	return map[string]any{
		"method":  r.Method,
		"path":    r.URL.Path,
		"query":   sanitizeString(r.URL.RawQuery),
		"headers": sanitizeHeaders(r.Header),
	}
}

func responseSummary(r *http.Response) any {
	return map[string]any{
		"status":  r.StatusCode,
		"headers": sanitizeHeaders(r.Header),
	}
}

func sanitizeHeaders(h http.Header) map[string]string {
	out := make(map[string]string)
	for _, name := range safeHeaders {
		if v := h.Get(name); v != "" {
			out[strings.ToLower(name)] = v
		}
	}
	for _, name := range sensitiveHeaders {
		if h.Get(name) != "" {
			out[strings.ToLower(name)] = "***REDACTED***"
		}
	}
	return out
}
