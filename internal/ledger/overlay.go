package ledger

import "strings"

// Key identifies one (account, month) paid mark. The source application
// stored these as "name_YYYY-MM" strings; the composite form avoids
// collisions when an account name contains the separator. KeyString
// reproduces the flat form for the HTTP boundary.
type Key struct {
	Account string
	Month   string
}

// KeyString renders the legacy flat key form.
func (k Key) KeyString() string {
	return k.Account + "_" + k.Month
}

// Overlay is the user-maintained set of months acknowledged as paid per
// account. It is owned by the caller (loaded from storage, mutated only
// by explicit toggles) and read by the matrix builder and the credit
// calculator. The engine never writes to it.
type Overlay map[Key]bool

// NewOverlay returns an empty overlay.
func NewOverlay() Overlay {
	return make(Overlay)
}

// Paid reports membership of an (account, month) mark.
func (o Overlay) Paid(account, month string) bool {
	return o[Key{Account: account, Month: month}]
}

// Mark records a paid month. Marking an already marked key is a no-op.
func (o Overlay) Mark(account, month string) {
	o[Key{Account: account, Month: month}] = true
}

// Unmark removes a paid month. Unmarking an absent key is a no-op.
func (o Overlay) Unmark(account, month string) {
	delete(o, Key{Account: account, Month: month})
}

// Toggle flips membership of a single key and returns the new state.
func (o Overlay) Toggle(account, month string) bool {
	k := Key{Account: account, Month: month}
	if o[k] {
		delete(o, k)
		return false
	}
	o[k] = true
	return true
}

// ParseKeyString splits a legacy flat key at the last underscore, since
// account names may themselves contain underscores while month keys never
// do. Returns false for strings with no separator.
func ParseKeyString(s string) (Key, bool) {
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return Key{}, false
	}
	return Key{Account: s[:i], Month: s[i+1:]}, true
}
