// Package interaction implements the section hover and selection state
// machine.
//
// A [Controller] owns the interaction [State] (at most one selected and one
// hovered section) and reacts to four pointer events:
//
//	event          state change                  effects
//	pointerenter   hovered = id                  restyle id, show tooltip
//	pointerleave   hovered = "" if it was id     hide tooltip, restyle id
//	pointermove    none                          reposition tooltip
//	click          selected = id                 restyle old and new selection,
//	                                             hide tooltip, render detail
//
// Every restyle goes through the style resolver, so a section leaving the
// pointer while selected keeps its selected look without any saved state.
//
// The controller does no I/O and never blocks. Effects are delivered to a
// [Surface], which the terminal viewer, the websocket session and the tests
// each implement. Callers must serialise calls; a controller is not safe for
// concurrent use.
//
// # Reloading
//
// [Controller.Reload] swaps in a new diagram and record mapping. It detaches
// every per-section binding created by the previous load before attaching
// new ones, and resets the state, so handlers never accumulate across
// reloads.
package interaction
