package schema

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/domain/ports"
)

// DefinitionsPointer is the JSON pointer prefix of every definition reference.
const DefinitionsPointer = "#/definitions/"

// Builder produces the body of a definition.
type Builder func() (*entities.Fragment, error)

// DefinitionKey identifies a definition: the descriptor after contextual and
// inline resolution, its effective nullability and its resolved annotations.
type DefinitionKey struct {
	Descriptor  ports.TypeDescriptor
	Annotations entities.Annotations
	Nullable    bool
	// Discriminator is the constant exposed on a root record, if any.
	Discriminator string
}

// Signature renders the key as a stable string. Keys with equal signatures
// share a definition. Descriptions are left out under an explicit Definition
// id: they travel on each reference, not in the shared body.
func (k DefinitionKey) Signature() string {
	annotations := k.Annotations
	if _, explicit := annotations.DefinitionID(); explicit {
		annotations = withoutDescription(annotations)
	}

	var sb strings.Builder
	sb.WriteString(k.Descriptor.Kind().String())
	sb.WriteByte('|')
	sb.WriteString(k.Descriptor.SerialName())
	if k.Nullable {
		sb.WriteString("|nullable")
	}
	if k.Discriminator != "" {
		sb.WriteString("|const=")
		sb.WriteString(strconv.Quote(k.Discriminator))
	}
	if summary := annotations.Summary(); summary != "" {
		sb.WriteByte('|')
		sb.WriteString(summary)
	}
	return sb.String()
}

func withoutDescription(as entities.Annotations) entities.Annotations {
	out := make(entities.Annotations, 0, len(as))
	for _, a := range as {
		if _, ok := a.(entities.Description); !ok {
			out = append(out, a)
		}
	}
	return out
}

type pendingDefinition struct {
	id    string
	build Builder
}

// Definitions is the memoized table of named schema definitions for one
// top-level synthesis. Requesting a key returns a $ref immediately and queues
// the body; Materialize drains the queue. A Definitions value is not safe for
// concurrent use and must not be shared between syntheses.
type Definitions struct {
	logger      *slog.Logger
	definitions map[string]*entities.Fragment
	signatures  map[string]string // id -> signature
	ids         map[string]string // signature -> id
	building    map[string]int    // signatures being built inline
	queue       []pendingDefinition
	enabled     bool
}

// NewDefinitions creates an empty table. When enabled is false, schemas are
// inlined unless an explicit Definition annotation asks otherwise.
func NewDefinitions(enabled bool, logger *slog.Logger) *Definitions {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Definitions{
		logger:      logger,
		definitions: make(map[string]*entities.Fragment),
		signatures:  make(map[string]string),
		ids:         make(map[string]string),
		building:    make(map[string]int),
		enabled:     enabled,
	}
}

// IDFor returns the definition id of key: the explicit Definition id when
// present, otherwise a name derived from the serial name and a hash of the
// key signature.
func (d *Definitions) IDFor(key DefinitionKey) string {
	if id, ok := key.Annotations.DefinitionID(); ok {
		return id
	}
	return derivedID(key.Descriptor.SerialName(), key.Signature())
}

func derivedID(serialName, signature string) string {
	var sb strings.Builder
	for _, r := range serialName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() > 0 {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatUint(xxhash.Sum64String(signature), 36))
	return sb.String()
}

// Request returns the schema to embed at a use site of key.
//
// Inlined keys call build right away. Every other key gets a reference to its
// definition and build is queued, without being called, the first time the id
// is seen. A key that is requested again while its inline build is still
// running (a recursive type) is turned into a definition so the recursion
// terminates.
func (d *Definitions) Request(key DefinitionKey, build Builder) (*entities.Fragment, error) {
	signature := key.Signature()
	if id, ok := d.ids[signature]; ok {
		return d.reference(id, key), nil
	}

	_, explicit := key.Annotations.DefinitionID()
	inline := key.Annotations.HasNoDefinition() || (!d.enabled && !explicit)
	if inline && d.building[signature] == 0 {
		d.building[signature]++
		defer func() { d.building[signature]-- }()
		return build()
	}
	if inline {
		d.logger.Debug("forcing definition for recursive type",
			"type", key.Descriptor.SerialName())
	}

	id := d.IDFor(key)
	if existing, ok := d.signatures[id]; ok && existing != signature {
		return nil, &errors.DefinitionCollisionError{ID: id, Existing: existing, Incoming: signature}
	}
	d.signatures[id] = signature
	d.ids[signature] = id
	d.queue = append(d.queue, pendingDefinition{id: id, build: build})
	d.logger.Debug("definition queued", "id", id, "type", key.Descriptor.SerialName())

	return d.reference(id, key), nil
}

func (d *Definitions) reference(id string, key DefinitionKey) *entities.Fragment {
	ref := entities.NewFragment().
		Set(entities.KeyRef, DefinitionsPointer+escapePointer(id)).
		Set(entities.KeyAdditionalProperties, false)
	if description, ok := key.Annotations.Description(); ok {
		ref.Set(entities.KeyDescription, description)
	}
	return ref
}

func escapePointer(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// Pending returns the number of queued definitions not built yet.
func (d *Definitions) Pending() int {
	return len(d.queue)
}

// Materialize builds every queued definition, including the ones queued while
// building others, and returns all definitions sorted by id. Each builder runs
// at most once.
func (d *Definitions) Materialize() (*entities.Fragment, error) {
	for len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]

		body, err := next.build()
		if err != nil {
			return nil, fmt.Errorf("building definition %s: %w", next.id, err)
		}
		d.definitions[next.id] = body
		d.logger.Debug("definition built", "id", next.id, "remaining", len(d.queue))
	}

	ids := make([]string, 0, len(d.definitions))
	for id := range d.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := entities.NewFragment()
	for _, id := range ids {
		out.Set(id, d.definitions[id])
	}
	return out, nil
}
