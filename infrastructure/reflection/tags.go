package reflection

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
)

type jsonTag struct {
	name      string
	omitEmpty bool
	asString  bool
}

func parseJSONTag(tag string) jsonTag {
	parts := strings.Split(tag, ",")
	out := jsonTag{name: parts[0]}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty", "omitzero":
			out.omitEmpty = true
		case "string":
			out.asString = true
		}
	}
	return out
}

// schemaTag is the parsed form of a `jsonschema:"..."` struct tag.
type schemaTag struct {
	minimum      *float64
	maximum      *float64
	description  string
	pattern      string
	format       string
	definition   string
	enum         []string
	noDefinition bool
	optional     bool
	nullable     bool
}

// schemaTagItems maps every known item to whether it is a bare flag.
var schemaTagItems = map[string]bool{
	"optional": true, "nullable": true, "nodefinition": true,
	"description": false, "enum": false, "pattern": false, "format": false,
	"definition": false, "minimum": false, "maximum": false,
}

// parseSchemaTag reads comma separated items. A literal comma is written \,.
func parseSchemaTag(tag string) (schemaTag, error) {
	var out schemaTag
	for _, item := range splitEscaped(tag) {
		key, value, hasValue := strings.Cut(item, "=")
		if key == "" {
			continue
		}
		flag, known := schemaTagItems[key]
		if !known {
			return out, fmt.Errorf("unknown jsonschema tag item %q", key)
		}
		if flag == hasValue {
			return out, fmt.Errorf("malformed jsonschema tag item %q", item)
		}
		switch key {
		case "optional":
			out.optional = true
		case "nullable":
			out.nullable = true
		case "nodefinition":
			out.noDefinition = true
		case "description":
			out.description = value
		case "enum":
			out.enum = strings.Split(value, "|")
		case "pattern":
			out.pattern = value
		case "format":
			out.format = value
		case "definition":
			out.definition = value
		case "minimum", "maximum":
			bound, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return out, fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			if key == "minimum" {
				out.minimum = &bound
			} else {
				out.maximum = &bound
			}
		}
	}
	return out, nil
}

func splitEscaped(tag string) []string {
	var (
		items   []string
		current strings.Builder
	)
	for i := 0; i < len(tag); i++ {
		switch {
		case tag[i] == '\\' && i+1 < len(tag) && tag[i+1] == ',':
			current.WriteByte(',')
			i++
		case tag[i] == ',':
			items = append(items, current.String())
			current.Reset()
		default:
			current.WriteByte(tag[i])
		}
	}
	return append(items, current.String())
}

// annotations converts the tag for a field of Go type t.
func (s schemaTag) annotations(t reflect.Type) (entities.Annotations, error) {
	var out entities.Annotations

	if s.description != "" {
		out = append(out, entities.Description{Lines: strings.Split(s.description, `\n`)})
	}
	if len(s.enum) > 0 {
		out = append(out, entities.StringEnum{Values: s.enum})
	}
	if s.minimum != nil || s.maximum != nil {
		r, err := rangeFor(t, s.minimum, s.maximum)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if s.pattern != "" {
		if _, err := regexp2.Compile(s.pattern, regexp2.ECMAScript); err != nil {
			return nil, &errors.InvalidPatternError{Regex: s.pattern, Err: err}
		}
		out = append(out, entities.Pattern{Regex: s.pattern})
	}
	if s.format != "" {
		format, ok := entities.ParseFormat(s.format)
		if !ok {
			return nil, fmt.Errorf("unknown format %q", s.format)
		}
		out = append(out, entities.Format{Format: format})
	}
	switch {
	case s.definition != "" && s.noDefinition:
		return nil, fmt.Errorf("definition and nodefinition are exclusive")
	case s.definition != "":
		out = append(out, entities.Definition{ID: s.definition})
	case s.noDefinition:
		out = append(out, entities.NoDefinition{})
	}
	return out, nil
}

// rangeFor builds the range of a numeric field. A missing bound defaults to
// the limit of the Go type.
func rangeFor(t reflect.Type, minimum, maximum *float64) (entities.Annotation, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		r := entities.FloatRange{Min: -math.MaxFloat64, Max: math.MaxFloat64}
		if t.Kind() == reflect.Float32 {
			r = entities.FloatRange{Min: -math.MaxFloat32, Max: math.MaxFloat32}
		}
		if minimum != nil {
			r.Min = *minimum
		}
		if maximum != nil {
			r.Max = *maximum
		}
		if r.Min > r.Max {
			return nil, fmt.Errorf("range minimum %v is above maximum %v", r.Min, r.Max)
		}
		return r, nil
	}

	lo, hi, ok := integerLimits(t)
	if !ok {
		return nil, fmt.Errorf("minimum and maximum need a numeric field, got %s", t)
	}
	r := entities.IntRange{Min: lo, Max: hi}
	for _, bound := range []struct {
		value  *float64
		target *int64
	}{{minimum, &r.Min}, {maximum, &r.Max}} {
		if bound.value == nil {
			continue
		}
		if *bound.value != math.Trunc(*bound.value) {
			return nil, fmt.Errorf("bound %v of integer field is fractional", *bound.value)
		}
		*bound.target = int64(*bound.value)
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("range minimum %d is above maximum %d", r.Min, r.Max)
	}
	return r, nil
}

func integerLimits(t reflect.Type) (int64, int64, bool) {
	switch t.Kind() {
	case reflect.Int8:
		return math.MinInt8, math.MaxInt8, true
	case reflect.Int16:
		return math.MinInt16, math.MaxInt16, true
	case reflect.Int32:
		return math.MinInt32, math.MaxInt32, true
	case reflect.Int, reflect.Int64:
		return math.MinInt64, math.MaxInt64, true
	case reflect.Uint8:
		return 0, math.MaxUint8, true
	case reflect.Uint16:
		return 0, math.MaxUint16, true
	case reflect.Uint32:
		return 0, math.MaxUint32, true
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return 0, math.MaxInt64, true
	}
	return 0, 0, false
}
