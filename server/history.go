package server

import (
	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/protocol"
)

// replayTick is one recorded simulation step, kept for instant replays.
type replayTick struct {
	gameStep uint32
	packets  protocol.ObjectFrame
}

// replayEntry is one queued replay frame. forceView is negative when each
// viewer keeps their own camera target.
type replayEntry struct {
	forceView game.PlayerIndex
	tick      replayTick
}

// tickHistory tracks the simulation step counter, the recent tick buffer and
// the pending replay playback queue.
type tickHistory struct {
	// gameStep starts at its maximum value so the first step wraps to zero.
	gameStep uint32
	saved    *ring[replayTick]
	queue    []replayEntry
}

func (h *tickHistory) reset() {
	h.gameStep = ^uint32(0)
	if h.saved != nil {
		h.saved.clear()
	}
	h.queue = h.queue[:0]
}

func (h *tickHistory) pushSaved(t replayTick) {
	if h.saved != nil {
		h.saved.push(t)
	}
}

func (h *tickHistory) popReplay() (replayEntry, bool) {
	if len(h.queue) == 0 {
		return replayEntry{}, false
	}
	e := h.queue[0]
	h.queue = h.queue[1:]
	return e, true
}

// SetHistoryLength sizes the replay tick buffer. Zero disables tick capture
// entirely.
func (s *Server) SetHistoryLength(n int) {
	if n <= 0 {
		s.history.saved = nil
		return
	}
	if s.history.saved == nil || len(s.history.saved.items) != n {
		s.history.saved = newRing[replayTick](n)
	}
}

// AddReplayToQueue schedules the recorded steps in [startStep, endStep] for
// playback in chronological order. forceView pins every viewer's camera to
// one player for the duration; pass a negative index to keep normal views.
// Steps that are no longer, or not yet, in the buffer are skipped.
func (s *Server) AddReplayToQueue(startStep, endStep uint32, forceView game.PlayerIndex) {
	h := &s.history
	if h.saved == nil || endStep < startStep {
		return
	}
	iStart := saturatingSub(h.gameStep, startStep)
	iEnd := saturatingSub(h.gameStep, endStep)
	for i := int(iStart); i >= int(iEnd); i-- {
		if t := h.saved.get(i); t != nil {
			h.queue = append(h.queue, replayEntry{forceView: forceView, tick: *t})
		}
	}
}

// ReplayQueued reports whether replay frames are pending playback.
func (s *Server) ReplayQueued() bool {
	return len(s.history.queue) > 0
}

func saturatingSub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
