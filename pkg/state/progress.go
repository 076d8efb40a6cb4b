package state

import "time"

// Progress is the persisted state of one hunt session. It is the
// complete durable record: a session can be resumed from Progress and
// the hunt definition alone.
type Progress struct {
	HuntFile          string    `json:"hunt_file"`            // hunt definition this session runs
	StepIndex         int       `json:"step_index"`           // current step, clamped against the hunt on load
	NarrationUnlocked bool      `json:"narration_unlocked"`   // one-way false -> true
	UpdatedAt         time.Time `json:"updated_at,omitempty"` // set on every save
}

// NewProgress returns the default progress for a fresh session: first
// step, narration locked.
func NewProgress(huntFile string) *Progress {
	return &Progress{
		HuntFile:  huntFile,
		StepIndex: 0,
	}
}

// Touch stamps the progress with the current time. Called before every
// save.
func (p *Progress) Touch() {
	p.UpdatedAt = time.Now().UTC()
}
