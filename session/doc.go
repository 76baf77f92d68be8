// SPDX-License-Identifier: EPL-2.0

// Package session owns a mixing graph: the voices registered with it, the
// listener, a renderer, and the backend the mixed blocks are played to.
//
// Voices are addressed by uuid. All setters take the session lock, which
// RenderCycle also holds, so parameters never change in the middle of a
// block:
//
//	s, _ := session.New(session.Config{Setup: setup, Backend: out})
//	id, _ := s.AddVoice(v)
//	_ = s.Play(id)
//	_ = s.Run(ctx, 0)
//
// Retired voices are dropped before the next cycle and reported through
// Config.OnRetire.
package session
