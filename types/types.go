// Package types models the small algebra of types the compiler supports:
// int, pointer-to-T, and array-of-T.  It also carries the sizing rules
// used by sizeof and by pointer-arithmetic scaling.
package types

// Kind tags a Type.
type Kind int

const (
	// Int is a 4-byte (semantically) signed integer.  Every slot that
	// holds one, whether a local, a parameter, or an array element,
	// physically occupies 8 bytes of frame space; see Size and the
	// scaling note on Pointer arithmetic in package parser.
	Int Kind = iota

	// Pointer is a pointer to some other Type.
	Pointer

	// Array is a fixed-length, single-dimension array of some other
	// Type.
	Array
)

// Type is an immutable description of a value's type.
type Type struct {
	Kind Kind

	// Base is the pointee (Pointer) or element type (Array).  Unused
	// for Int.
	Base *Type

	// Length is the element count of an Array.  Unused otherwise.
	Length int
}

// IntType is the single shared instance of the "int" type; comparisons
// against it may use pointer equality as a shortcut, but Kind equality
// is always the correct test.
var IntType = &Type{Kind: Int}

// PointerTo returns a Type describing a pointer to base.
func PointerTo(base *Type) *Type {
	return &Type{Kind: Pointer, Base: base}
}

// ArrayOf returns a Type describing an array of length elements of base.
func ArrayOf(base *Type, length int) *Type {
	return &Type{Kind: Array, Base: base, Length: length}
}

// Size returns the sizeof value reported to user programs: 4 for int, 8
// for any pointer, and size(elem)*length for an array.  This is the
// "semantic" size; it is deliberately smaller than the 8-byte frame slot
// every scalar local actually occupies (see §3 of the specification).
func (t *Type) Size() int {
	switch t.Kind {
	case Int:
		return 4
	case Pointer:
		return 8
	case Array:
		return t.Base.Size() * t.Length
	default:
		return 0
	}
}

// IsPointerLike reports whether t is eligible for pointer arithmetic:
// a Pointer, or an Array (which decays to an address in an rvalue
// context without ever becoming a first-class Pointer value).
func (t *Type) IsPointerLike() bool {
	return t.Kind == Pointer || t.Kind == Array
}

// String renders a Type the way a diagnostic message would refer to it.
func (t *Type) String() string {
	switch t.Kind {
	case Int:
		return "int"
	case Pointer:
		return t.Base.String() + "*"
	case Array:
		return t.Base.String() + "[]"
	default:
		return "?"
	}
}
