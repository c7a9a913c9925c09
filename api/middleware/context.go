package middleware

import (
	"context"
	"strconv"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the resolved caller for the current request. Exactly one of
// the two shapes applies: a system admin (no business scope) or an employee
// bound to a business with a role.
type Identity struct {
	ActorType  enums.ActorType
	ActorID    int64
	BusinessID int64
	Role       enums.EmployeeRole
}

// IsAdmin reports whether the caller is a system admin.
func (i Identity) IsAdmin() bool {
	return i.ActorType == enums.ActorTypeAdmin
}

// CanManage reports whether the caller may administer business records.
func (i Identity) CanManage() bool {
	if i.IsAdmin() {
		return true
	}
	return i.Role == enums.EmployeeRoleOwner || i.Role == enums.EmployeeRoleManager
}

// ActorIDString renders the actor identifier for log fields and cache keys.
func (i Identity) ActorIDString() string {
	return strconv.FormatInt(i.ActorID, 10)
}

// WithIdentity injects the resolved caller into the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the resolved caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(Identity)
	return identity, ok
}
