package doorstate

import (
	"fmt"
	"time"

	"prospec-live/internal/entity"
)

// MaxPassages caps the repassage counter. A door that reached the cap is no
// longer scheduled for automatic follow-up.
const MaxPassages = 3

// ErrInvalidTransition rejects a status outside the closed set. The machine is
// flat: any in-set status is reachable from any other, current status wins.
type ErrInvalidTransition struct {
	Status entity.DoorStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("doorstate: invalid status %q", e.Status)
}

var validStatuses = map[entity.DoorStatus]bool{
	entity.StatusNonVisite:    true,
	entity.StatusVisite:       true,
	entity.StatusAbsent:       true,
	entity.StatusRefus:        true,
	entity.StatusCurieux:      true,
	entity.StatusRdv:          true,
	entity.StatusContratSigne: true,
}

// followUpStatuses are the outcomes that schedule a repassage and therefore
// consume one of the bounded retries.
var followUpStatuses = map[entity.DoorStatus]bool{
	entity.StatusAbsent:  true,
	entity.StatusRdv:     true,
	entity.StatusCurieux: true,
}

// Result is the outcome of a validated transition. FollowUpExhausted tells the
// caller that no further auto-retry may be scheduled for this door.
type Result struct {
	Door              entity.Door
	FollowUpExhausted bool
}

// Emitter receives the doorChanged side effect. The machine itself performs no
// network I/O; broadcasting is the realtime layer's job.
type Emitter func(door entity.Door)

type Machine struct {
	emit Emitter
	now  func() time.Time
}

func New(emit Emitter) *Machine {
	return &Machine{emit: emit, now: time.Now}
}

// Apply validates newStatus and returns the updated door. The input door is
// taken by value so a rejected status leaves the caller's copy untouched.
func (m *Machine) Apply(door entity.Door, newStatus entity.DoorStatus, comment string) (Result, error) {
	if !validStatuses[newStatus] {
		return Result{}, &ErrInvalidTransition{Status: newStatus}
	}

	if followUpStatuses[newStatus] && door.PassageCount < MaxPassages {
		door.PassageCount++
	}

	door.Status = newStatus
	door.Comment = comment
	ts := m.now()
	door.UpdatedAt = &ts

	res := Result{
		Door:              door,
		FollowUpExhausted: door.PassageCount == MaxPassages,
	}

	if m.emit != nil {
		m.emit(door)
	}
	return res, nil
}
