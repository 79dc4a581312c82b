package event

import (
	"fmt"
	"reflect"
)

// NameOf resolves the registry name for an event identity.
//
// Resolution order:
//   - a Namer reports its own name, or is named by its type if that is empty
//   - a string (or a value whose kind is string) is the name itself
//   - any other value is named by its runtime type, pointers dereferenced,
//     as "import/path.TypeName"
//
// A nil identity, or one resolving to "", returns ErrInvalidEvent.
func NameOf(identity any) (string, error) {
	if identity == nil {
		return "", fmt.Errorf("%w: nil identity", ErrInvalidEvent)
	}

	// A typed nil pointer names its type, so (*UserCreated)(nil) can be
	// used to attach by type.
	if rv := reflect.ValueOf(identity); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return typeName(rv.Type()), nil
	}

	var name string
	switch v := identity.(type) {
	case Namer:
		// An unnamed event falls back to its type.
		if name = v.EventName(); name == "" {
			name = typeName(reflect.TypeOf(identity))
		}
	case string:
		name = v
	default:
		rv := reflect.ValueOf(identity)
		if rv.Kind() == reflect.String {
			name = rv.String()
		} else {
			name = typeName(rv.Type())
		}
	}

	if name == "" {
		return "", fmt.Errorf("%w: empty name for %T", ErrInvalidEvent, identity)
	}
	return name, nil
}

// typeName returns the qualified name of t with pointer indirections removed.
// Unnamed types fall back to their literal form.
func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// TypeName returns the registry name used for events of type T.
// It lets callers attach by type without constructing an instance:
//
//	m.Attach(event.TypeName[*UserCreated](), listener)
func TypeName[T any]() string {
	return typeName(reflect.TypeFor[T]())
}
