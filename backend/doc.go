// SPDX-License-Identifier: EPL-2.0

// Package backend defines the AudioBackend contract between the renderer
// and an output or input device, and a Null backend for headless use.
//
// The renderer writes each finished block to Playback and may pull input
// through Capture. Concrete backends live in subpackages: wavfile writes
// RIFF/WAVE files, device plays through the system sound device.
package backend
