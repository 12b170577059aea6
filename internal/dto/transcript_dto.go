package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishTranscriptSegmentMessage is the in-process pipeline payload carrying
// one recognizer result from the audio transport to the transcription service.
type PublishTranscriptSegmentMessage struct {
	SessionId uuid.UUID `json:"sessionId"`
	Text      string    `json:"text"`
	IsFinal   bool      `json:"isFinal"`
	Timestamp time.Time `json:"timestamp"`
}
