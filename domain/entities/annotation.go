package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type annotationKind int

const (
	annotationDescription annotationKind = iota
	annotationStringEnum
	annotationIntRange
	annotationFloatRange
	annotationPattern
	annotationFormat
	// Definition and NoDefinition compete for the same slot.
	annotationDefinition
)

// Annotation is metadata attached to a type or to a field site.
// The set of implementations is closed; see the types below.
type Annotation interface {
	annotationKind() annotationKind
	summary() string
}

// Description documents a type or field. Lines are joined with a newline.
type Description struct {
	Lines []string
}

// StringEnum restricts a string to a fixed set of values.
type StringEnum struct {
	Values []string
}

// IntRange bounds an integer kind.
type IntRange struct {
	Min int64
	Max int64
}

// FloatRange bounds a floating point kind.
type FloatRange struct {
	Min float64
	Max float64
}

// Pattern constrains a string with a regular expression.
type Pattern struct {
	Regex string
}

// Format declares a named format from the catalog.
type Format struct {
	Format JSONFormat
}

// Definition forces a named definition with an explicit id.
type Definition struct {
	ID string
}

// NoDefinition forces the schema to be inlined at the use site.
type NoDefinition struct{}

func (Description) annotationKind() annotationKind  { return annotationDescription }
func (StringEnum) annotationKind() annotationKind   { return annotationStringEnum }
func (IntRange) annotationKind() annotationKind     { return annotationIntRange }
func (FloatRange) annotationKind() annotationKind   { return annotationFloatRange }
func (Pattern) annotationKind() annotationKind      { return annotationPattern }
func (Format) annotationKind() annotationKind       { return annotationFormat }
func (Definition) annotationKind() annotationKind   { return annotationDefinition }
func (NoDefinition) annotationKind() annotationKind { return annotationDefinition }

func (a Description) summary() string {
	return "description=" + strconv.Quote(strings.Join(a.Lines, "\n"))
}

func (a StringEnum) summary() string {
	quoted := make([]string, len(a.Values))
	for i, v := range a.Values {
		quoted[i] = strconv.Quote(v)
	}
	return "enum=[" + strings.Join(quoted, ",") + "]"
}

func (a IntRange) summary() string {
	return fmt.Sprintf("intRange=%d..%d", a.Min, a.Max)
}

func (a FloatRange) summary() string {
	return "floatRange=" + strconv.FormatFloat(a.Min, 'g', -1, 64) + ".." + strconv.FormatFloat(a.Max, 'g', -1, 64)
}

func (a Pattern) summary() string { return "pattern=" + strconv.Quote(a.Regex) }

func (a Format) summary() string { return "format=" + string(a.Format) }

func (a Definition) summary() string { return "definition=" + strconv.Quote(a.ID) }

func (NoDefinition) summary() string { return "nodefinition" }

// Annotations is an ordered list of annotations. For every kind the last
// occurrence wins.
type Annotations []Annotation

// ResolveAnnotations merges annotation layers ordered from the use site
// outwards (field site, the field's type, the type behind an inline wrapper,
// ...). A kind present in a closer layer hides every occurrence of that kind in
// farther layers; kinds absent from closer layers are inherited. The result is
// ordered so that last-wins selection picks the closest value.
func ResolveAnnotations(layers ...Annotations) Annotations {
	owner := make(map[annotationKind]int)
	total := 0
	for i, layer := range layers {
		total += len(layer)
		for _, a := range layer {
			if a == nil {
				continue
			}
			if _, ok := owner[a.annotationKind()]; !ok {
				owner[a.annotationKind()] = i
			}
		}
	}
	if total == 0 {
		return nil
	}

	resolved := make(Annotations, 0, total)
	for i := len(layers) - 1; i >= 0; i-- {
		for _, a := range layers[i] {
			if a != nil && owner[a.annotationKind()] == i {
				resolved = append(resolved, a)
			}
		}
	}
	return resolved
}

func last[T Annotation](as Annotations) (T, bool) {
	for i := len(as) - 1; i >= 0; i-- {
		if v, ok := as[i].(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Description returns the lines of the last Description joined by newlines.
func (as Annotations) Description() (string, bool) {
	d, ok := last[Description](as)
	if !ok {
		return "", false
	}
	text := strings.Join(d.Lines, "\n")
	return text, text != ""
}

// StringEnum returns the values of the last StringEnum.
func (as Annotations) StringEnum() ([]string, bool) {
	e, ok := last[StringEnum](as)
	if !ok || len(e.Values) == 0 {
		return nil, false
	}
	return e.Values, true
}

// IntRange returns the last IntRange.
func (as Annotations) IntRange() (IntRange, bool) { return last[IntRange](as) }

// FloatRange returns the last FloatRange.
func (as Annotations) FloatRange() (FloatRange, bool) { return last[FloatRange](as) }

// Pattern returns the regular expression of the last Pattern.
func (as Annotations) Pattern() (string, bool) {
	p, ok := last[Pattern](as)
	if !ok || p.Regex == "" {
		return "", false
	}
	return p.Regex, true
}

// Format returns the last declared Format.
func (as Annotations) Format() (JSONFormat, bool) {
	f, ok := last[Format](as)
	return f.Format, ok
}

// DefinitionID returns the explicit definition id, if the winning definition
// policy is an explicit Definition with a non-empty id.
func (as Annotations) DefinitionID() (string, bool) {
	for i := len(as) - 1; i >= 0; i-- {
		switch a := as[i].(type) {
		case Definition:
			return a.ID, a.ID != ""
		case NoDefinition:
			return "", false
		}
	}
	return "", false
}

// HasNoDefinition reports whether the winning definition policy is NoDefinition.
func (as Annotations) HasNoDefinition() bool {
	for i := len(as) - 1; i >= 0; i-- {
		switch as[i].(type) {
		case Definition:
			return false
		case NoDefinition:
			return true
		}
	}
	return false
}

// ValidationRegex returns the regular expression used to check serialized
// values: an explicit Pattern first, then the regex of the declared Format.
func (as Annotations) ValidationRegex() (string, bool) {
	if p, ok := as.Pattern(); ok {
		return p, true
	}
	if f, ok := as.Format(); ok {
		return f.Regex()
	}
	return "", false
}

// Summary renders the effective annotations as a stable string: one entry per
// kind, last occurrence only, sorted. Equal summaries mean equal schemas.
func (as Annotations) Summary() string {
	winners := make(map[annotationKind]string)
	for _, a := range as {
		if a != nil {
			winners[a.annotationKind()] = a.summary()
		}
	}
	parts := make([]string, 0, len(winners))
	for _, s := range winners {
		parts = append(parts, s)
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}
