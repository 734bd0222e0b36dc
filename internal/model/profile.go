package model

import "time"

// Profile holds per-user settings the core depends on: the IANA timezone
// used for month bucketing and the default account for new expenses.
type Profile struct {
	UpdatedAt      time.Time
	UserID         string
	Timezone       string
	DefaultAccount AccountTag
}

// ResolveAccount decides which account tag a new expense gets.
//
// Explicit input wins and, when it differs from the stored default, becomes
// the new default (persistDefault true). Otherwise the stored default is
// used as-is. The side effect of persisting the default stays with the
// caller so the decision is testable on its own.
func ResolveAccount(explicit, profileDefault AccountTag) (account AccountTag, persistDefault bool) {
	if explicit != "" {
		return explicit, explicit != profileDefault
	}
	return profileDefault, false
}
