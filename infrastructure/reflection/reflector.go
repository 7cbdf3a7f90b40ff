// Package reflection describes Go types as type descriptors, following the
// encoding/json rules for field names, embedding and optionality.
//
// Struct tags refine the description:
//
//	type Server struct {
//	    Host string `json:"host" jsonschema:"description=DNS name or address,format=hostname"`
//	    Port int    `json:"port,omitempty" jsonschema:"minimum=1,maximum=65535"`
//	}
//
// The jsonschema tag takes comma separated items: description=, enum=a|b,
// minimum=, maximum=, pattern=, format=, definition=, nodefinition, optional
// and nullable. A literal comma is written \,.
package reflection

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/infrastructure/descriptor"
)

// SchemaAnnotator is implemented by types that declare type-level annotations.
type SchemaAnnotator interface {
	SchemaAnnotations() entities.Annotations
}

// InlineMarker is implemented by single-field structs that are transparent
// wrappers: their schema is the schema of their field.
type InlineMarker interface {
	SchemaInline()
}

// Enumerator is implemented by string types with a fixed set of values.
type Enumerator interface {
	EnumValues() []string
}

var (
	annotatorType     = reflect.TypeOf((*SchemaAnnotator)(nil)).Elem()
	inlineMarkerType  = reflect.TypeOf((*InlineMarker)(nil)).Elem()
	enumeratorType    = reflect.TypeOf((*Enumerator)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	timeType          = reflect.TypeOf(time.Time{})
)

type union struct {
	variants []UnionVariant
	open     bool
}

type implementation struct {
	union reflect.Type
	typ   reflect.Type
}

// Reflector turns Go types into descriptors. Descriptors are cached per type,
// so recursive and shared types are described once. It is safe for
// concurrent use.
type Reflector struct {
	provider        *descriptor.Provider
	namer           func(string) string
	cache           map[reflect.Type]*descriptor.Descriptor
	unions          map[reflect.Type]union
	implementations []implementation
	errors          []error
	mu              sync.Mutex
}

// NewReflector creates a Reflector with the given options. time.Time is
// described as a date-time string unless an option resolves it otherwise.
//
//	r, err := reflection.NewReflector(
//	    reflection.WithSnakeCase(),
//	    reflection.WithUnion[Shape](reflection.Variant("circle", Circle{})),
//	)
func NewReflector(opts ...Option) (*Reflector, error) {
	provider, err := descriptor.NewProvider()
	if err != nil {
		return nil, err
	}
	r := &Reflector{
		provider: provider,
		namer:    func(name string) string { return name },
		cache:    make(map[reflect.Type]*descriptor.Descriptor),
		unions:   make(map[reflect.Type]union),
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.errors) > 0 {
		return nil, r.errors[0]
	}

	if _, ok := provider.Contextual(timeType.String()); !ok {
		dateTime := descriptor.Inline(timeType.String(),
			descriptor.Field("value", descriptor.String(), entities.Format{Format: entities.FormatDateTime}))
		if err := provider.RegisterContextual(timeType.String(), dateTime); err != nil {
			return nil, err
		}
	}

	for _, impl := range r.implementations {
		d, err := r.ReflectType(impl.typ)
		if err != nil {
			return nil, fmt.Errorf("implementation %s of %s: %w", impl.typ, impl.union, err)
		}
		if err := provider.RegisterImplementation(unionName(impl.union), d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Provider resolves the contextual types and open implementations that
// reflected descriptors refer to. Pass it to the generator.
func (r *Reflector) Provider() *descriptor.Provider {
	return r.provider
}

// Reflect describes the type of v.
func (r *Reflector) Reflect(v any) (*descriptor.Descriptor, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, &errors.UnsupportedTypeError{Type: "nil", Reason: "untyped nil has no type"}
	}
	return r.ReflectType(t)
}

// ReflectType describes t.
func (r *Reflector) ReflectType(t reflect.Type) (*descriptor.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &session{
		reflector: r,
		pending:   make(map[reflect.Type]*descriptor.Descriptor),
		inlining:  make(map[reflect.Type]bool),
	}
	d, err := s.describe(t)
	if err != nil {
		return nil, err
	}
	for typ, pending := range s.pending {
		r.cache[typ] = pending
	}
	return d, nil
}

// session holds the descriptors created by one ReflectType call. They join
// the cache only when the whole call succeeds.
type session struct {
	reflector *Reflector
	pending   map[reflect.Type]*descriptor.Descriptor
	inlining  map[reflect.Type]bool
}

func (s *session) known(t reflect.Type) (*descriptor.Descriptor, bool) {
	if d, ok := s.reflector.cache[t]; ok {
		return d, true
	}
	d, ok := s.pending[t]
	return d, ok
}

func (s *session) describe(t reflect.Type) (*descriptor.Descriptor, error) {
	if t.Kind() == reflect.Pointer {
		d, err := s.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return d.Nullable(), nil
	}
	if d, ok := s.known(t); ok {
		return d, nil
	}

	d, err := s.describeType(t)
	if err != nil {
		return nil, err
	}
	if annotator, ok := valueAs[SchemaAnnotator](t, annotatorType); ok && d.Kind() != entities.KindContextual {
		d.Annotate(annotator.SchemaAnnotations()...)
	}
	if t.Name() != "" {
		s.pending[t] = d
	}
	return d, nil
}

func (s *session) describeType(t reflect.Type) (*descriptor.Descriptor, error) {
	if u, ok := s.reflector.unions[t]; ok {
		return s.describeUnion(t, u)
	}
	if t.Name() != "" && (implements(t, jsonMarshalerType) || implements(t, textMarshalerType)) {
		return descriptor.Contextual(t.String()), nil
	}
	if enum, ok := valueAs[Enumerator](t, enumeratorType); ok {
		if t.Kind() != reflect.String {
			return nil, &errors.UnsupportedTypeError{Type: t.String(), Reason: "enumerations must have a string kind"}
		}
		return descriptor.Enum(t.String(), enum.EnumValues()...), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return descriptor.Boolean(), nil
	case reflect.Int8, reflect.Uint8:
		return descriptor.Byte(), nil
	case reflect.Int16, reflect.Uint16:
		return descriptor.Short(), nil
	case reflect.Int32, reflect.Uint32:
		return descriptor.Int(), nil
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return descriptor.Long(), nil
	case reflect.Float32:
		return descriptor.Float(), nil
	case reflect.Float64:
		return descriptor.Double(), nil
	case reflect.String:
		return descriptor.String(), nil
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return descriptor.String().Annotate(entities.Format{Format: entities.FormatByte}), nil
		}
		elem, err := s.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return descriptor.List(elem), nil
	case reflect.Map:
		return s.describeMap(t)
	case reflect.Struct:
		return s.describeStruct(t)
	case reflect.Interface:
		return nil, &errors.UnsupportedTypeError{Type: t.String(), Reason: "interfaces need a registered union"}
	}
	return nil, &errors.UnsupportedTypeError{Type: t.String(), Reason: t.Kind().String() + " values have no JSON form"}
}

// describeMap follows encoding/json: keys are strings, integers or text
// marshalers, and all of them encode as JSON strings.
func (s *session) describeMap(t reflect.Type) (*descriptor.Descriptor, error) {
	key := t.Key()
	switch {
	case key.Kind() == reflect.String, implements(key, textMarshalerType):
	default:
		if _, _, ok := integerLimits(key); !ok {
			return nil, &errors.UnsupportedTypeError{Type: t.String(), Reason: "map keys must be strings, integers or text marshalers"}
		}
	}
	value, err := s.describe(t.Elem())
	if err != nil {
		return nil, err
	}
	return descriptor.Map(descriptor.String(), value), nil
}

func (s *session) describeStruct(t reflect.Type) (*descriptor.Descriptor, error) {
	if implements(t, inlineMarkerType) {
		return s.describeInline(t)
	}

	rec := descriptor.Record(serialName(t))
	if t.Name() != "" {
		// Registered before the fields so recursive references find it.
		s.pending[t] = rec
	}
	fields, err := s.fields(t)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		rec.AddField(f)
	}
	return rec, nil
}

func (s *session) describeInline(t reflect.Type) (*descriptor.Descriptor, error) {
	if s.inlining[t] {
		return nil, &errors.UnsupportedTypeError{Type: t.String(), Reason: "inline wrapper contains itself"}
	}
	s.inlining[t] = true
	defer delete(s.inlining, t)

	fields, err := s.fields(t)
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, &errors.UnsupportedTypeError{
			Type:   t.String(),
			Reason: fmt.Sprintf("inline wrappers need exactly one field, found %d", len(fields)),
		}
	}
	return descriptor.Inline(serialName(t), fields[0]), nil
}

func (s *session) fields(t reflect.Type) ([]descriptor.Element, error) {
	var elements []descriptor.Element
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		jt := parseJSONTag(tag)

		if sf.Anonymous && jt.name == "" {
			embedded := sf.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && !implements(embedded, jsonMarshalerType) {
				promoted, err := s.fields(embedded)
				if err != nil {
					return nil, err
				}
				elements = append(elements, promoted...)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		element, err := s.field(sf, jt)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
		}
		elements = append(elements, element)
	}
	return elements, nil
}

func (s *session) field(sf reflect.StructField, jt jsonTag) (descriptor.Element, error) {
	name := jt.name
	if name == "" {
		name = s.reflector.namer(sf.Name)
	}

	st, err := parseSchemaTag(sf.Tag.Get("jsonschema"))
	if err != nil {
		return descriptor.Element{}, err
	}

	d, err := s.describe(sf.Type)
	if err != nil {
		return descriptor.Element{}, err
	}
	if jt.asString && isScalar(sf.Type) {
		d = descriptor.String()
		if sf.Type.Kind() == reflect.Pointer {
			d = d.Nullable()
		}
	}
	if st.nullable {
		d = d.Nullable()
	}

	annotations, err := st.annotations(sf.Type)
	if err != nil {
		return descriptor.Element{}, err
	}
	if jt.omitEmpty || st.optional {
		return descriptor.OptionalField(name, d, annotations...), nil
	}
	return descriptor.Field(name, d, annotations...), nil
}

func (s *session) describeUnion(t reflect.Type, u union) (*descriptor.Descriptor, error) {
	name := unionName(t)
	if u.open {
		return descriptor.Open(name), nil
	}

	variants := make([]descriptor.Element, 0, len(u.variants))
	for _, v := range u.variants {
		d, err := s.describe(v.typ)
		if err != nil {
			return nil, fmt.Errorf("variant %q of %s: %w", v.tag, t, err)
		}
		variants = append(variants, descriptor.Variant(v.tag, d))
	}
	sort.SliceStable(variants, func(i, j int) bool { return variants[i].Name < variants[j].Name })
	return descriptor.Sealed(name, variants...), nil
}

func serialName(t reflect.Type) string {
	if t.Name() == "" {
		return "struct"
	}
	return t.String()
}

func unionName(t reflect.Type) string {
	return t.String()
}

func isScalar(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	_, _, ok := integerLimits(t)
	return ok
}

// implements reports whether t or *t has the methods of iface.
func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

// valueAs returns a value of t, or of *t, as an I.
func valueAs[I any](t, iface reflect.Type) (I, bool) {
	var zero I
	switch {
	case t.Implements(iface):
		v, ok := reflect.Zero(t).Interface().(I)
		return v, ok
	case reflect.PointerTo(t).Implements(iface):
		v, ok := reflect.New(t).Interface().(I)
		return v, ok
	}
	return zero, false
}
