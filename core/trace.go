package core

import "sync"

// Round is the outcome of one round of the game.
type Round struct {
	Index   int    `json:"round"`
	State   State  `json:"state"`
	Signal  Signal `json:"signal"`
	Act     State  `json:"act"`
	Success bool   `json:"success"`
}

// Trace holds the rounds of a run recorded with RunConfig.RecordTrace.
type Trace struct {
	mtx    *sync.Mutex
	rounds []*Round
}

func NewTrace() *Trace {
	return &Trace{
		rounds: make([]*Round, 0),
		mtx:    &sync.Mutex{},
	}
}

func (t *Trace) AddRound(r *Round) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.rounds = append(t.rounds, r)
}

// Rounds returns a copy of the recorded rounds.
func (t *Trace) Rounds() []*Round {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return append([]*Round(nil), t.rounds...)
}
