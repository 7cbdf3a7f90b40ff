package reflection

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/schemagen/domain/ports"
)

// Option configures a Reflector under construction.
type Option func(*Reflector)

// UnionVariant is one case of a closed interface union.
type UnionVariant struct {
	typ reflect.Type
	tag string
}

// Variant declares the concrete type of value as the case tagged tag.
//
//	reflection.WithUnion[Shape](
//	    reflection.Variant("circle", Circle{}),
//	    reflection.Variant("square", Square{}),
//	)
func Variant(tag string, value any) UnionVariant {
	return UnionVariant{tag: tag, typ: reflect.TypeOf(value)}
}

// WithFieldNamer names struct fields that carry no json tag name.
// Fields keep their Go name by default.
func WithFieldNamer(namer func(string) string) Option {
	return func(r *Reflector) {
		r.namer = namer
	}
}

// WithSnakeCase names untagged fields in snake_case. jsonschema.ToSnakeCase
// joins words with '-', so the separator is swapped.
func WithSnakeCase() Option {
	return WithFieldNamer(snakeCase)
}

func snakeCase(name string) string {
	return strings.ReplaceAll(jsonschema.ToSnakeCase(name), "-", "_")
}

// WithUnion describes the interface T as a closed tagged union.
func WithUnion[T any](variants ...UnionVariant) Option {
	return func(r *Reflector) {
		iface, err := interfaceOf[T]()
		if err != nil {
			r.errors = append(r.errors, err)
			return
		}
		for _, v := range variants {
			if v.typ == nil || !v.typ.Implements(iface) {
				r.errors = append(r.errors, fmt.Errorf("variant %q of %s does not implement it", v.tag, iface))
				return
			}
		}
		r.unions[iface] = union{variants: variants}
	}
}

// WithOpenUnion describes the interface T as an open tagged union. Its cases
// are the implementations registered with WithImplementation.
func WithOpenUnion[T any]() Option {
	return func(r *Reflector) {
		iface, err := interfaceOf[T]()
		if err != nil {
			r.errors = append(r.errors, err)
			return
		}
		if _, exists := r.unions[iface]; !exists {
			r.unions[iface] = union{open: true}
		}
	}
}

// WithImplementation registers the concrete type of value as an open
// implementation of the interface T.
func WithImplementation[T any](value any) Option {
	return func(r *Reflector) {
		WithOpenUnion[T]()(r)
		iface, err := interfaceOf[T]()
		if err != nil {
			return
		}
		impl := reflect.TypeOf(value)
		if impl == nil || !impl.Implements(iface) {
			r.errors = append(r.errors, fmt.Errorf("%v does not implement %s", impl, iface))
			return
		}
		r.implementations = append(r.implementations, implementation{union: iface, typ: impl})
	}
}

// WithContextual resolves T, a type with its own JSON encoding, to concrete.
func WithContextual[T any](concrete ports.TypeDescriptor) Option {
	return func(r *Reflector) {
		name := typeOf[T]().String()
		if err := r.provider.RegisterContextual(name, concrete); err != nil {
			r.errors = append(r.errors, err)
		}
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func interfaceOf[T any]() (reflect.Type, error) {
	t := typeOf[T]()
	if t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%s is not an interface type", t)
	}
	return t, nil
}
