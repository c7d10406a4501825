package registry

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// reservedPrefixes lists package paths whose interfaces are never eligible
// as abstract-type aliases, mirroring invariant 5: platform abstract types
// are not user-defined containers.
var reservedPrefixes = []string{
	"error",
	"io.",
	"fmt.",
	"sort.",
	"context.",
	"encoding",
	"reflect.",
}

func isReservedIface(t reflect.Type) bool {
	name := t.PkgPath() + "." + t.Name()
	if t.Name() == "error" && t.PkgPath() == "" {
		return true
	}
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Registry holds the canonical and alias indices built by Register. Create
// one with New: the zero value has nil indices and Register panics on it.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool

	canonical         map[string]*ExposableMember
	canonicalByBase   map[string][]*ExposableMember
	aliases           map[string]*ExposableMember
	aliasesByBase     map[string][]*ExposableMember
	canonicalScanOrder []*ExposableMember
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		canonical:       make(map[string]*ExposableMember),
		canonicalByBase: make(map[string][]*ExposableMember),
		aliases:         make(map[string]*ExposableMember),
		aliasesByBase:   make(map[string][]*ExposableMember),
	}
}

// Register scans one container object: obj must be a non-nil pointer to a
// struct. aliasCandidates lists the abstract (interface) types the caller
// wants tested for alias registration; Go reflection cannot enumerate
// implemented interfaces without a candidate set, so the caller supplies
// one explicitly. Register is safe to call from multiple goroutines but is
// intended to run only during startup, before Freeze.
func (r *Registry) Register(obj any, aliasCandidates ...reflect.Type) error {
	if r.frozen.Load() {
		return fmt.Errorf("registry: Register called after Freeze")
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("registry: container must be a non-nil pointer to a struct, got %T", obj)
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("registry: container must point to a struct, got %T", obj)
	}
	containerName := elem.Type().Name()

	var descriptors []MemberDescriptor
	if d, ok := obj.(Describer); ok {
		descriptors = d.Describe()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := make([]*ExposableMember, 0, len(descriptors))
	for _, d := range descriptors {
		member, err := buildMember(containerName, rv, elem, d)
		if err != nil {
			return &DescribeError{ContainerName: containerName, GoMember: d.GoMember, Cause: err}
		}
		key := member.FullKey()
		if _, exists := r.canonical[key]; exists {
			// First-writer-wins: a previously registered (more-derived, in
			// scan-order terms) declaration already claimed this key.
			continue
		}
		r.canonical[key] = member
		r.canonicalScanOrder = append(r.canonicalScanOrder, member)
		if member.Kind == Callable {
			r.canonicalByBase[member.BaseKey()] = append(r.canonicalByBase[member.BaseKey()], member)
		}
		inserted = append(inserted, member)
	}

	for _, ifaceType := range aliasCandidates {
		if ifaceType.Kind() != reflect.Interface || isReservedIface(ifaceType) {
			continue
		}
		if !rv.Type().Implements(ifaceType) {
			continue
		}
		aliasName := ifaceType.Name()
		for _, member := range inserted {
			aliasKey := aliasName + "." + member.MemberName
			if member.Kind == Callable {
				aliasKey = aliasName + "." + member.MemberName + member.FullKey()[len(member.BaseKey()):]
			}
			if _, exists := r.aliases[aliasKey]; exists {
				continue // ties broken by scan order: first container wins
			}
			r.aliases[aliasKey] = member
			if member.Kind == Callable {
				aliasBase := aliasName + "." + member.MemberName
				r.aliasesByBase[aliasBase] = append(r.aliasesByBase[aliasBase], member)
			}
		}
	}

	return nil
}

// Freeze marks scanning complete. After Freeze, Resolve takes no locks.
func (r *Registry) Freeze() { r.frozen.Store(true) }

func buildMember(containerName string, recv, elem reflect.Value, d MemberDescriptor) (*ExposableMember, error) {
	m := &ExposableMember{
		ContainerName:    containerName,
		MemberName:       d.WireName,
		Kind:             d.Kind,
		Secured:          d.Secured,
		CredentialFamily: d.CredentialFamily,
		Static:           d.Static,
		Description:      d.Description,
		recv:             recv,
	}

	switch d.Kind {
	case Callable:
		m.Immutable = true
		method := recv.MethodByName(d.GoMember)
		if !method.IsValid() {
			return nil, fmt.Errorf("no method %q on %s", d.GoMember, containerName)
		}
		m.method = method
		mt := method.Type()
		for i := 0; i < mt.NumIn(); i++ {
			m.Parameters = append(m.Parameters, Parameter{
				Name:     "arg" + strconv.Itoa(i),
				TypeName: shortTypeName(mt.In(i)),
				Index:    i,
			})
		}
		if mt.NumOut() == 0 {
			m.ReturnTypeName = "void"
		} else {
			m.ReturnTypeName = shortTypeName(mt.Out(0))
		}
	case Datum:
		m.Immutable = d.Immutable
		sf, ok := elem.Type().FieldByName(d.GoMember)
		if !ok {
			return nil, fmt.Errorf("no field %q on %s", d.GoMember, containerName)
		}
		m.fieldIndex = sf.Index
		m.ReturnTypeName = shortTypeName(sf.Type)
	default:
		return nil, fmt.Errorf("unknown member kind for %q", d.GoMember)
	}

	return m, nil
}

func shortTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Resolve implements the four-step lookup of spec §4.1: direct DATUM lookup,
// exact-overload lookup when parameter type names are supplied, then
// overload-set resolution, each falling through canonical before alias.
func (r *Registry) Resolve(containerName, memberName string, parameterTypeNames []string) (*ExposableMember, error) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	baseKey := containerName + "." + memberName
	if m, ok := r.canonical[baseKey]; ok {
		return m, nil
	}
	if m, ok := r.aliases[baseKey]; ok {
		return m, nil
	}

	if len(parameterTypeNames) > 0 {
		fullKey := baseKey + "(" + strings.Join(parameterTypeNames, ",") + ")"
		if m, ok := r.canonical[fullKey]; ok {
			return m, nil
		}
		if m, ok := r.aliases[fullKey]; ok {
			return m, nil
		}
		return nil, &NotFoundError{ContainerName: containerName, MemberName: memberName}
	}

	set := r.canonicalByBase[baseKey]
	if len(set) == 0 {
		set = r.aliasesByBase[baseKey]
	}
	switch len(set) {
	case 0:
		return nil, &NotFoundError{ContainerName: containerName, MemberName: memberName}
	case 1:
		return set[0], nil
	default:
		return nil, &AmbiguousInvocationError{ContainerName: containerName, MemberName: memberName, Candidates: set}
	}
}

// All returns every canonical (non-alias) member in scan order, for
// introspection.
func (r *Registry) All() []*ExposableMember {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	out := make([]*ExposableMember, len(r.canonicalScanOrder))
	copy(out, r.canonicalScanOrder)
	return out
}
