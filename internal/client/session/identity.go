// Package session resolves the active identity used to scope all local and
// remote keys. Identity is explicit: every store query and mirror call takes
// the resolved value as a parameter, nothing looks it up ambiently.
package session

// Identity is the resolved active user: either an authenticated account or
// a device-scoped anonymous id.
type Identity struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// CanSync reports whether this identity's data may reach the remote mirror.
// Anonymous data is device-local only; this is a hard precondition, not a
// policy toggle.
func (i Identity) CanSync() bool {
	return !i.Anonymous && i.UserID != ""
}
