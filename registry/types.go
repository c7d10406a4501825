// Package registry discovers exposable members on user-supplied container
// objects and indexes them for name-based resolution, the way a reflection
// based RPC invoker builds a per-type method table once and serves lookups
// against it for the life of the process.
package registry

import "reflect"

// Kind distinguishes a callable member from a value cell.
type Kind int

const (
	// Callable is a member that accepts arguments and returns a result.
	Callable Kind = iota
	// Datum is a named value cell, readable and optionally writable.
	Datum
)

func (k Kind) String() string {
	switch k {
	case Callable:
		return "CALLABLE"
	case Datum:
		return "DATUM"
	default:
		return "UNKNOWN"
	}
}

// CredentialFamily is the coarse-grained authorization class attached to a
// secured member.
type CredentialFamily int

const (
	// NoCredential marks a member that requires no credential at all.
	NoCredential CredentialFamily = iota
	// TokenOnly requires a valid bearer token; a key never satisfies it (a
	// valid key sent without a token is rejected as the wrong family).
	TokenOnly
	// KeyOnly requires a valid shared key; a token never satisfies it (a
	// valid token sent without a key is rejected as the wrong family).
	KeyOnly
	// Either accepts a token or a key, preferring the token.
	Either
)

// Parameter describes one formal parameter of a CALLABLE.
type Parameter struct {
	Name     string
	TypeName string
	Index    int
}

// ExposableMember is the central registry entity: one method or field made
// addressable over the wire.
type ExposableMember struct {
	ContainerName    string
	MemberName       string
	Kind             Kind
	Secured          bool
	CredentialFamily CredentialFamily
	Immutable        bool
	Static           bool
	Parameters       []Parameter
	ReturnTypeName   string
	Description      string

	// recv is the container instance this member was discovered on.
	recv reflect.Value
	// method is the bound Go method for a CALLABLE (recv.MethodByName result).
	method reflect.Value
	// fieldIndex locates the backing struct field for a DATUM, valid for
	// reflect.Value.FieldByIndex on the dereferenced receiver.
	fieldIndex []int
}

// FullKey is the canonical wire key: Container.Member for a DATUM,
// Container.Member(T1,T2,...) for a CALLABLE.
func (m *ExposableMember) FullKey() string {
	base := m.ContainerName + "." + m.MemberName
	if m.Kind == Datum {
		return base
	}
	base += "("
	for i, p := range m.Parameters {
		if i > 0 {
			base += ","
		}
		base += p.TypeName
	}
	return base + ")"
}

// BaseKey is Container.Member, ignoring parameter types.
func (m *ExposableMember) BaseKey() string {
	return m.ContainerName + "." + m.MemberName
}

// Receiver returns the container instance this member was discovered on.
func (m *ExposableMember) Receiver() reflect.Value { return m.recv }

// Method exposes the bound method for the dispatcher's invoke path. Only
// valid when Kind == Callable.
func (m *ExposableMember) Method() reflect.Value { return m.method }

// FieldValue returns the addressable field value for a DATUM, for reading or
// writing. Only valid when Kind == Datum.
func (m *ExposableMember) FieldValue() reflect.Value {
	return m.recv.Elem().FieldByIndex(m.fieldIndex)
}
