// SPDX-License-Identifier: EPL-2.0

package envelope

import "fmt"

// MaxStages is the number of breakpoints a Timed envelope can hold.
const MaxStages = 6

// Breakpoint is the level at the start of a stage and the time in seconds
// the stage takes to reach the next breakpoint's level.
type Breakpoint struct {
	Level float32
	Time  float32
}

type Status uint8

const (
	StatusRunning Status = iota
	// StatusSustain holds the level until Release is called.
	StatusSustain
	// StatusFinished is reported once the last stage has completed.
	StatusFinished
	// StatusTerminated signals that the voice should be retired: a zero-time
	// stage was reached that is neither the sustain point nor the end.
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSustain:
		return "sustain"
	case StatusFinished:
		return "finished"
	case StatusTerminated:
		return "terminated"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Timed is a break-point envelope such as ADSR. Stage i moves from
// Points[i].Level to Points[i+1].Level in Points[i].Time seconds; the last
// stage holds its level for its time and then finishes. With Sustain set,
// the first zero-time stage before the last holds until Release.
//
// Progress is measured in blocks scaled by the velocity handed to Get, so a
// voice played at twice the pitch runs through its envelope twice as fast.
type Timed struct {
	Points  []Breakpoint
	Sustain bool

	length   [MaxStages]float32
	step     [MaxStages]float32
	value    float32
	pos      float32
	stage    int
	released bool
	status   Status
}

// Init validates the breakpoints and converts stage times to blocks.
func (e *Timed) Init(blockRate float32) error {
	if !(blockRate > 0) {
		return ErrInvalidBlockRate
	}
	n := len(e.Points)
	if n == 0 || n > MaxStages {
		return fmt.Errorf("%w: got %d", ErrInvalidStages, n)
	}

	for i, p := range e.Points {
		if p.Time < 0 {
			return fmt.Errorf("%w: stage %d", ErrNegativeTime, i)
		}
		e.length[i] = p.Time * blockRate
		next := p.Level
		if i+1 < n {
			next = e.Points[i+1].Level
		}
		e.step[i] = 0
		if e.length[i] > 0 {
			e.step[i] = (next - p.Level) / e.length[i]
		}
	}
	e.Reset()

	return nil
}

// Reset rewinds the envelope to its first stage.
func (e *Timed) Reset() {
	e.stage = 0
	e.pos = 0
	e.released = false
	e.status = StatusRunning
	if len(e.Points) == 0 {
		e.value = 0
		e.status = StatusFinished
		return
	}
	e.value = e.Points[0].Level
	e.enter()
}

// Release ends the sustain hold; later sustain points are skipped too.
func (e *Timed) Release() {
	if e.released {
		return
	}
	e.released = true
	if e.status == StatusSustain {
		e.status = StatusRunning
		e.advance()
	}
}

func (e *Timed) Released() bool { return e.released }
func (e *Timed) Stage() int      { return e.stage }
func (e *Timed) Value() float32  { return e.value }
func (e *Timed) Status() Status  { return e.status }

// Get returns the level for the current block and advances the envelope by
// velocity blocks. A stopped voice releases the envelope first.
func (e *Timed) Get(stopped bool, velocity float32) (float32, Status) {
	if stopped {
		e.Release()
	}
	if e.status != StatusRunning {
		return e.value, e.status
	}

	out := e.value
	if velocity <= 0 {
		velocity = 1
	}

	remaining := velocity
	for remaining > 0 && e.status == StatusRunning {
		left := e.length[e.stage] - e.pos
		if remaining < left {
			e.pos += remaining
			e.value += e.step[e.stage] * remaining
			break
		}
		remaining -= left
		e.advance()
	}

	return out, StatusRunning
}

// advance moves to the next stage, snapping to its level.
func (e *Timed) advance() {
	e.stage++
	e.pos = 0
	if e.stage >= len(e.Points) {
		e.stage = len(e.Points) - 1
		e.value = e.Points[e.stage].Level
		e.status = StatusFinished
		return
	}
	e.value = e.Points[e.stage].Level
	e.enter()
}

// enter resolves zero-time stages at the current index.
func (e *Timed) enter() {
	for e.status == StatusRunning && e.length[e.stage] == 0 {
		last := e.stage == len(e.Points)-1
		switch {
		case last:
			e.status = StatusFinished
		case e.Sustain && !e.released:
			e.status = StatusSustain
		case e.Sustain && e.released:
			e.stage++
			e.value = e.Points[e.stage].Level
		default:
			e.status = StatusTerminated
		}
	}
}
