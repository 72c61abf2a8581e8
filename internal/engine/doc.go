// Package engine is the scene composition engine.
//
// An Engine is the explicit context every screen of the application shares:
// it binds the persistent store, the wardrobe registry, the occasion album
// and the journal. Screens open a Surface for the scene they edit and close
// it on teardown.
//
// ARCHITECTURE:
//
// Single logical writer per surface:
// Every Surface method takes the surface mutex and runs the scene and drag
// logic to completion before returning. Input from platform callbacks on
// other goroutines can be funneled through a Dispatcher, which applies it
// in arrival order from one Run loop.
//
// Commit flow:
//  1. Freeze the scene under the surface lock (deep copy, new id, createdAt)
//  2. Queue the frozen entry as pending
//  3. Release the lock and append pending entries to the journal
//  4. Drop each entry from pending once its write succeeds
//
// A failed write leaves the entry pending. The scene is never rolled back
// and RetryPending is always safe because journal appends skip ids that are
// already stored.
//
// Teardown:
// Surface.Close and the end of Dispatcher.Run both end the active drag
// session, so no placement stays in the dragging state after its surface
// goes away.
package engine
