// Package authz is the row-level access control gate. Every store operation
// consults it before touching SQL, so enforcement sits at the data boundary
// rather than in handler code alone.
package authz

import "errors"

// Resource identifies a protected table.
type Resource string

const (
	ResourceProfile Resource = "profile"
	ResourceMessage Resource = "message"
)

// Operation identifies the kind of access being attempted.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// SystemSubject is the elevated identity used by the signup projection. The
// signing-up principal has no profile yet and could not pass the owner check
// itself.
const SystemSubject = "system"

// ErrForbidden signals an authorization denial. It is distinct from
// not-found and from validation failures.
var ErrForbidden = errors.New("forbidden")

type rule func(requester, owner string) bool

func allowAll(string, string) bool { return true }

func ownerOnly(requester, owner string) bool {
	return requester != "" && requester == owner
}

func denyAll(string, string) bool { return false }

// policy mirrors the per-row rules enforced on profiles and messages:
// profiles are world-readable but self-mutable and never directly deletable
// (cascade only); messages are strictly private to their owner and immutable
// once written.
var policy = map[Resource]map[Operation]rule{
	ResourceProfile: {
		OpRead:   allowAll,
		OpCreate: ownerOnly,
		OpUpdate: ownerOnly,
		OpDelete: denyAll,
	},
	ResourceMessage: {
		OpRead:   ownerOnly,
		OpCreate: ownerOnly,
		OpUpdate: denyAll,
		OpDelete: ownerOnly,
	},
}

// Authorize evaluates the policy table for a single row. Unknown
// resource/operation pairs deny. The system subject bypasses the owner check;
// it is only ever used inside the signup transaction.
func Authorize(res Resource, op Operation, requester, owner string) error {
	allowed := false
	if requester == SystemSubject {
		allowed = op != OpDelete && op != OpUpdate
	} else if r, ok := policy[res][op]; ok {
		allowed = r(requester, owner)
	}
	observe(res, op, allowed)
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// CanRead reports whether requester may see rows owned by owner. Denied reads
// are filtered to empty results instead of erroring, so row existence never
// leaks to non-owners.
func CanRead(res Resource, requester, owner string) bool {
	return Authorize(res, OpRead, requester, owner) == nil
}
