package entity

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptionSession is the persisted summary of one canvassing recording.
type TranscriptionSession struct {
	Id           uuid.UUID
	CommercialId uuid.UUID
	BuildingId   *uuid.UUID
	StartTime    time.Time
	EndTime      time.Time
	Transcript   string
	Stats        map[string]interface{}
	CreatedAt    time.Time
}
