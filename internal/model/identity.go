package model

// Identity is an opaque principal handle. The registry never inspects its
// contents; it only compares identities for equality and looks them up in
// the user and worker-roster stores.
type Identity string

// Anonymous is the distinguished identity assigned to unauthenticated
// callers. All anonymous callers share this single value, which is why they
// also share one rate-limit bucket per skill (see ratelimit.Ledger).
const Anonymous Identity = "anon"

// IsAnonymous reports whether id is the distinguished anonymous identity.
func (id Identity) IsAnonymous() bool {
	return id == Anonymous || id == ""
}

// Role is a closed set of privilege levels. Admin implies Worker.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
	RoleUser   Role = "user"
)

// IsWorker reports whether the role carries worker privileges.
func (r Role) IsWorker() bool {
	return r == RoleWorker || r == RoleAdmin
}

// IsAdmin reports whether the role carries admin privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Caller is the authenticated principal attached to every update call.
type Caller struct {
	Identity Identity
	Role     Role
}

func (c Caller) Authenticated() bool {
	return !c.Identity.IsAnonymous()
}
