// Package viz renders mechanisms in the terminal with Bubble Tea.
//
// Bodies are drawn on a Braille [Canvas], projected on the inertial x-z
// plane (z up) by a [Viewport]. A free tumbling body is drawn in 3D through
// a [Camera].
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	R          - Reset to the initial state
//	[ ]        - Step back and forth through the recent history
//	Tab        - Select the next coordinate (manual controller)
//	Left/Right - Push the selected coordinate (manual controller)
//	0          - Release all manual forces
//	T          - Cycle colour themes
//	G          - Toggle GIF recording
//	?          - Help
//	Q          - Quit
package viz
