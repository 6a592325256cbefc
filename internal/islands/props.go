package islands

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
)

// ValidateProps checks the declared attributes of one component occurrence
// against its schema. Every problem is fail-soft: type mismatches coerce or
// fall back to the schema default, missing required values substitute the
// default, unknown attributes outside the universal set are dropped — each
// with a warning on the collector. Compilation never aborts here.
func ValidateProps(reg *registry.Registration, attrs []types.Attr, universal []string, collector *errors.Collector) map[string]any {
	props := make(map[string]any, len(attrs))
	seen := make(map[string]bool, len(attrs))

	for _, attr := range attrs {
		name, spec, ok := findSpec(reg, attr.Key)
		if !ok {
			if IsUniversal(attr.Key, universal) {
				props[attr.Key] = attr.Value
				continue
			}
			collector.Warnf(reg.Name, "unknown property %q on component %s", attr.Key, reg.Name)
			continue
		}
		seen[name] = true
		if coerced := CoerceValue(reg.Name, name, spec, attr.Value, collector); coerced != nil {
			props[name] = coerced
		}
	}

	for name, spec := range reg.Props {
		if spec.Required && !seen[name] {
			collector.Warnf(reg.Name, "component %s is missing required property %q", reg.Name, name)
			if spec.Default != nil {
				props[name] = normalizeDefault(spec)
			}
		}
	}

	return props
}

// CoerceValue converts value to the type spec declares. Coercion is
// idempotent: feeding an already-coerced value back in yields the same
// value. Uncoercible input falls back to the schema default with a warning.
func CoerceValue(component, name string, spec registry.PropSpec, value any, collector *errors.Collector) any {
	switch spec.Type {
	case registry.PropString:
		return stringValue(value)

	case registry.PropNumber:
		n, ok := numberValue(value)
		if !ok {
			collector.Warnf(component, "property %q on %s expects a number, got %q; using default", name, component, stringValue(value))
			return normalizeDefault(spec)
		}
		return clampNumber(component, name, spec, n, collector)

	case registry.PropBoolean:
		b, ok := boolValue(value)
		if !ok {
			collector.Warnf(component, "property %q on %s expects a boolean, got %q; using default", name, component, stringValue(value))
			return normalizeDefault(spec)
		}
		return b

	case registry.PropEnum:
		s := stringValue(value)
		for _, candidate := range spec.Enum {
			if candidate == s {
				return s
			}
		}
		collector.Warnf(component, "property %q on %s must be one of %s, got %q; using default",
			name, component, strings.Join(spec.Enum, "|"), s)
		return normalizeDefault(spec)
	}

	return value
}

func findSpec(reg *registry.Registration, attrName string) (string, registry.PropSpec, bool) {
	// Attribute keys arrive lowercased from the tokenizer; schemas may
	// declare camelCase names.
	for name, spec := range reg.Props {
		if strings.EqualFold(name, attrName) {
			return name, spec, true
		}
	}
	return "", registry.PropSpec{}, false
}

// IsUniversal reports whether attrName is on the passthrough allow-list.
// Entries ending in "-" match as prefixes (data-, aria-).
func IsUniversal(attrName string, universal []string) bool {
	for _, u := range universal {
		if strings.HasSuffix(u, "-") {
			if strings.HasPrefix(attrName, u) {
				return true
			}
		} else if attrName == u {
			return true
		}
	}
	return false
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func boolValue(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		// A bare attribute tokenizes as an empty string and means true.
		switch strings.ToLower(v) {
		case "", "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

func clampNumber(component, name string, spec registry.PropSpec, n float64, collector *errors.Collector) float64 {
	if spec.Min != nil && n < *spec.Min {
		collector.Warnf(component, "property %q on %s below minimum %v; clamped", name, component, *spec.Min)
		return *spec.Min
	}
	if spec.Max != nil && n > *spec.Max {
		collector.Warnf(component, "property %q on %s above maximum %v; clamped", name, component, *spec.Max)
		return *spec.Max
	}
	return n
}

// normalizeDefault returns the schema default in its coerced representation
// so defaults and coerced values compare equal.
func normalizeDefault(spec registry.PropSpec) any {
	if spec.Default == nil {
		return nil
	}
	switch spec.Type {
	case registry.PropNumber:
		if n, ok := numberValue(spec.Default); ok {
			return n
		}
	case registry.PropBoolean:
		if b, ok := boolValue(spec.Default); ok {
			return b
		}
	case registry.PropString, registry.PropEnum:
		return stringValue(spec.Default)
	}
	return spec.Default
}
