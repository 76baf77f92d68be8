// SPDX-License-Identifier: EPL-2.0

// Package scene describes a mix in a Lua script and plays it through a
// session.
//
// A script sets globals and declares emitters and the listener:
//
//	frequency = 48000
//	mode      = "spatial"
//	renderer  = "threadpool"
//	workers   = 4
//	duration  = 6
//	refresh   = 50
//
//	listener { position = {0, 0, 0}, at = {0, 0, -1} }
//
//	emitter {
//	    name     = "car",
//	    tone     = 220,
//	    position = {-30, 0, -4},
//	    velocity = {10, 0, 0},
//	    model    = "inverse-clamped",
//	    loop     = true,
//	}
//
//	emitter {
//	    file     = "pad.ogg",
//	    gain     = 0.4,
//	    pan      = -0.3,
//	    start    = 1,
//	    stop     = 5,
//	    envelope = { {0, 0.5}, {1, 0}, sustain = true },
//	    tremolo  = { shape = "sine", min = 0.6, max = 1, frequency = 3 },
//	}
//
// Only the base, table, string and math libraries are available to scripts.
// Emitters with a position are 3D and are folded to mono on load.
package scene
