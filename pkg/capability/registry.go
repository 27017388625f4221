package capability

import (
	"fmt"
	"strings"
)

// Role is the portal role a capability set is resolved for.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMentor  Role = "mentor"
	RoleStudent Role = "student"
)

// EnumSource supplies the current legal values of the portal's domain enums.
// The registry derives every enum constraint from this source at construction
// so descriptor schemas cannot drift from the domain definitions.
type EnumSource interface {
	Values(enum string) []string
}

// Domain enum names understood by an EnumSource.
const (
	EnumUserRole         = "user_role"
	EnumEnrollmentStatus = "enrollment_status"
	EnumBillStatus       = "bill_status"
	EnumPaymentScheme    = "payment_scheme"
	EnumContentType      = "content_type"
	EnumProgressStatus   = "progress_status"
	EnumSortOrder        = "sort_order"
)

// Binding couples a descriptor with the roles allowed to reach it.
type Binding struct {
	Descriptor Descriptor
	Roles      []Role
}

// Registry is the read-only role→capability table assembled at startup. It is
// safe for concurrent readers; nothing mutates it after New returns.
type Registry struct {
	byRole map[Role][]Descriptor
	order  []string
	byName map[string]Descriptor
}

// New builds a registry from the binding table. Duplicate descriptor names
// are rejected, as is any non-admin capability the admin role cannot reach
// (the universal search tool being the one sanctioned exception, which the
// binding table expresses by simply listing every role on it).
func New(bindings []Binding) (*Registry, error) {
	r := &Registry{
		byRole: make(map[Role][]Descriptor),
		byName: make(map[string]Descriptor),
	}
	for _, b := range bindings {
		name := strings.TrimSpace(b.Descriptor.Name)
		if name == "" {
			return nil, fmt.Errorf("capability name is empty")
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("capability %s already registered", name)
		}
		admin := false
		for _, role := range b.Roles {
			if role == RoleAdmin {
				admin = true
			}
		}
		if !admin {
			return nil, fmt.Errorf("capability %s is not reachable by admin", name)
		}
		r.byName[name] = b.Descriptor
		r.order = append(r.order, name)
		for _, role := range b.Roles {
			r.byRole[role] = append(r.byRole[role], b.Descriptor)
		}
	}
	return r, nil
}

// ForRole returns the ordered capability set for the role. Unknown roles get
// the empty set: the model then has no tools and can only produce plain text.
func (r *Registry) ForRole(role Role) []Descriptor {
	descriptors, ok := r.byRole[role]
	if !ok {
		return nil
	}
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Names returns every registered capability name in registration order. The
// sanitizer uses this as its scrub list.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the descriptor for a name, if registered.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[strings.TrimSpace(name)]
	return d, ok
}
