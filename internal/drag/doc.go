// Package drag turns raw touch and pointer input into drag sessions that
// reposition placed items.
//
// ARCHITECTURE:
//
// Session is the only contract downstream code sees:
//
//	Begin(key, x, y) -> Update(x, y)* -> End()
//
// Controller implements Session over a Target (the scene). The Touch and
// Pointer adapters translate platform events into Session calls, so scene
// logic never learns which input family is in use.
//
// Session semantics:
//   - At most one session is active per Controller. Begin for a different
//     key while a session is active is rejected; Begin for the same key
//     re-anchors.
//   - Begin records anchor = origin - current position, so the item does not
//     jump when the first Update arrives at the origin.
//   - Update sets position = page - anchor. It depends only on the anchor,
//     never on the previous position, so duplicate delivery is harmless.
//   - End only clears the active marker. Positions are applied eagerly by
//     Update; there is no separate commit step.
//   - Update and End without an active session are silent no-ops: a stray
//     move after an end is an expected input race, not an error.
//
// Controller is not safe for concurrent use. Callers serialize input on one
// goroutine (see engine.Dispatcher) or hold their own lock.
package drag
