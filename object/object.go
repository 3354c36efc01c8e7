// Package object defines the contracts runtime values implement. The
// TypeName and Copy methods are normally generated by mortar-gen.
package object

// Object is a value the runtime can name.
type Object interface {
	TypeName() string
}

// Copier is an Object that can produce an independent copy of itself.
type Copier interface {
	Object
	Copy() Object
}

// TypeNameOf returns o's type name, or "Null" for a nil object.
func TypeNameOf(o Object) string {
	if o == nil {
		return "Null"
	}
	return o.TypeName()
}

// CopyOf returns a copy of o when it implements Copier and o itself
// otherwise.
func CopyOf(o Object) Object {
	if c, ok := o.(Copier); ok {
		return c.Copy()
	}
	return o
}
