package actor

import "reflect"

// Envelope is a type-erased, single-owner container for one message. It
// carries the runtime type identity of the wrapped value and that value's
// (static) size in bytes (§3), so the selective-receive surface can test and
// consume it without the mailbox itself needing to know about user-defined
// types.
type Envelope struct {
	value any
	typ   reflect.Type
}

// NewEnvelope wraps v in an Envelope. v must be a "send-safe" value: nothing
// in this package enforces that beyond what Go's type system already does
// for values passed across goroutines.
func NewEnvelope(v any) Envelope {
	return Envelope{value: v, typ: reflect.TypeOf(v)}
}

// Type returns the runtime type of the wrapped value, or nil if the Envelope
// is the zero value.
func (e Envelope) Type() reflect.Type {
	return e.typ
}

// Size returns the static size, in bytes, of the wrapped value's type (the
// same quantity unsafe.Sizeof would report for a value of that type). For
// reference types (slices, maps, pointers, strings) this is the size of the
// header, not of any referenced data — it is a diagnostic, not an accounting
// figure.
func (e Envelope) Size() uintptr {
	if e.typ == nil {
		return 0
	}
	return e.typ.Size()
}

// Valid reports whether the Envelope holds a value (is not the zero value).
func (e Envelope) Valid() bool {
	return e.typ != nil
}

// Is reports whether e holds a value of type T.
func Is[T any](e Envelope) bool {
	_, ok := e.value.(T)
	return ok
}

// Peek returns e's value, downcast to T, without consuming the Envelope. The
// second return is false if e does not hold a T.
func Peek[T any](e Envelope) (T, bool) {
	v, ok := e.value.(T)
	return v, ok
}

// Take consumes e, returning its value downcast to T. The second return is
// false if e does not hold a T, in which case the zero value of T is
// returned and e is left untouched (the caller retains ownership to push it
// back onto a save queue).
func Take[T any](e Envelope) (T, bool) {
	v, ok := e.value.(T)
	return v, ok
}

// Equal reports whether e holds a value of v's type, equal to v. Equality
// follows reflect.DeepEqual, consistent with the rest of the package's use
// of reflection for type-erased comparison.
func Equal(e Envelope, v any) bool {
	if e.typ == nil {
		return v == nil
	}
	return e.typ == reflect.TypeOf(v) && reflect.DeepEqual(e.value, v)
}
