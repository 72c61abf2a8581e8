// Package harness runs composition scenarios end to end against the engine.
//
// A scenario seeds a wardrobe, opens one surface, replays a list of steps
// (placements, touch and pointer input, commits, store faults) and checks
// assertions against the final state. The journal document the run leaves
// in the store is compared byte for byte against a golden file.
//
// # Scenario Format
//
//	name: drag_then_commit
//	description: "What this scenario validates"
//	kind: outfit            # or occasion
//	background: photo://x   # occasion only
//	wardrobe:
//	  - name: shirt
//	    image: img://shirt
//	    category: 上衣       # optional, applied with Recategorize
//	steps:
//	  - add: shirt
//	  - touch: {phase: start, target: 0, points: [{x: 50, y: 60}]}
//	  - touch: {phase: move, points: [{x: 70, y: 90}]}
//	  - touch: {phase: end}
//	  - pointer: {phase: down, target: 0, x: 0, y: 0}
//	  - preview: preview://1
//	  - store: fail_writes  # or heal
//	  - commit: true
//	    expect_error: STORAGE_WRITE
//	  - retry: true
//	  - save_draft: true
//	assertions:
//	  - type: journal_count
//	    count: 1
//	  - type: position
//	    placement: 0
//	    x: 20
//	    y: 30
//
// Touch and pointer targets are placement indices in the order of add steps.
//
// # Deterministic Execution
//
// Every run uses a fresh in-memory SQLite store, a testutil.DeterministicClock
// and ids "id-1", "id-2", ... so the journal document is identical across runs.
package harness
