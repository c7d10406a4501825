package registry

// MemberDescriptor is the Go-native stand-in for the library's access
// annotation: a container declares one of these per method or field it
// wants exposed. WireName is the stable name clients address it by;
// GoMember is the actual Go method or field name, which may differ (this
// is how two Go methods with distinct names, e.g. SquareInt and
// SquareString, can share one wire name "square" as overloads).
type MemberDescriptor struct {
	WireName         string
	GoMember         string
	Kind             Kind
	Secured          bool
	CredentialFamily CredentialFamily
	Immutable        bool
	Static           bool
	Description      string
}

// Describer is implemented by container types to declare which of their
// methods and fields are exposable. A type with no Describe method exposes
// nothing; Describe is consulted exactly once, during Register.
type Describer interface {
	Describe() []MemberDescriptor
}
