package doorstate

import (
	"errors"
	"testing"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newDoor() entity.Door {
	return entity.Door{
		Id:         uuid.New(),
		Numero:     "12",
		Floor:      2,
		Status:     entity.StatusNonVisite,
		BuildingId: uuid.New(),
	}
}

func TestApplyIncrementsOnlyFollowUpStatuses(t *testing.T) {
	tests := []struct {
		name        string
		status      entity.DoorStatus
		wantPassage int
	}{
		{"absent increments", entity.StatusAbsent, 1},
		{"rdv increments", entity.StatusRdv, 1},
		{"curieux increments", entity.StatusCurieux, 1},
		{"visite does not increment", entity.StatusVisite, 0},
		{"refus does not increment", entity.StatusRefus, 0},
		{"contrat signe does not increment", entity.StatusContratSigne, 0},
		{"back to non visite does not increment", entity.StatusNonVisite, 0},
	}

	m := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Apply(newDoor(), tt.status, "")
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPassage, res.Door.PassageCount)
			assert.Equal(t, tt.status, res.Door.Status)
		})
	}
}

func TestApplyPassageCountCappedAtThree(t *testing.T) {
	m := New(nil)
	door := newDoor()

	// Four follow-up outcomes in a row: count must stop at 3.
	statuses := []entity.DoorStatus{
		entity.StatusAbsent, entity.StatusAbsent, entity.StatusCurieux, entity.StatusRdv,
	}
	prev := 0
	for i, s := range statuses {
		res, err := m.Apply(door, s, "")
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, res.Door.PassageCount, prev, "count must be monotonic")
		assert.LessOrEqual(t, res.Door.PassageCount, MaxPassages)
		prev = res.Door.PassageCount
		door = res.Door
		if i == len(statuses)-1 {
			assert.Equal(t, MaxPassages, res.Door.PassageCount)
			assert.True(t, res.FollowUpExhausted)
		}
	}
}

func TestApplyTerminalStatusSignalsExhaustion(t *testing.T) {
	m := New(nil)
	door := newDoor()
	door.PassageCount = 3

	res, err := m.Apply(door, entity.StatusRefus, "pas intéressé")
	assert.NoError(t, err)
	assert.Equal(t, 3, res.Door.PassageCount, "refus must not touch the counter")
	assert.True(t, res.FollowUpExhausted)

	res, err = m.Apply(door, entity.StatusContratSigne, "")
	assert.NoError(t, err)
	assert.Equal(t, 3, res.Door.PassageCount)
	assert.True(t, res.FollowUpExhausted)
}

func TestApplyRejectsUnknownStatus(t *testing.T) {
	m := New(nil)
	door := newDoor()
	door.Comment = "original"

	_, err := m.Apply(door, entity.DoorStatus("BOGUS"), "ignored")
	var invalid *ErrInvalidTransition
	assert.True(t, errors.As(err, &invalid))

	// Caller's copy is untouched: no partial mutation on rejection.
	assert.Equal(t, entity.StatusNonVisite, door.Status)
	assert.Equal(t, 0, door.PassageCount)
	assert.Equal(t, "original", door.Comment)
}

func TestApplyEmitsDoorChanged(t *testing.T) {
	var emitted []entity.Door
	m := New(func(d entity.Door) { emitted = append(emitted, d) })

	res, err := m.Apply(newDoor(), entity.StatusRdv, "revenir jeudi")
	assert.NoError(t, err)
	assert.Len(t, emitted, 1)
	assert.Equal(t, res.Door, emitted[0])
	assert.Equal(t, "revenir jeudi", emitted[0].Comment)
}
