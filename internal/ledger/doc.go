// Package ledger implements the roster budget ledger.
//
// The ledger values every drafted player at price plus effective price
// change, where a live delta (when one has arrived) supersedes the static
// weekly change. A team's budget is a ratchet: the nominal floor, raised
// to the seed roster's value when that value already exceeds the floor.
// The ratchet is fixed from the seed roster, never from the currently
// drafted set, so a team cannot raise its own ceiling by overspending.
package ledger
