package service

import (
	"context"
	"encoding/json"
	"sync"

	"prospec-live/internal/audio"
	"prospec-live/internal/dto"
	"prospec-live/internal/entity"
	"prospec-live/internal/pkg/logger"
	"prospec-live/internal/repository/contract"
	"prospec-live/internal/transcript"
	"prospec-live/pkg/events"
	pktNats "prospec-live/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type ITranscriptionService interface {
	Consume(ctx context.Context) error
	Formatted(sessionId uuid.UUID) (string, transcript.Stats, bool)
	FinalizeSession(ctx context.Context, commercialId uuid.UUID, buildingId *uuid.UUID, summary *audio.Session) (*entity.TranscriptionSession, error)
	GetHistory(ctx context.Context, commercialId uuid.UUID) ([]*entity.TranscriptionSession, error)
}

// transcriptionService consumes raw recognizer segments from the in-process
// pipeline, assembles them into paragraphs per session, and relays finalized
// segments to the supervisor bus.
type transcriptionService struct {
	pubSub  *gochannel.GoChannel
	repo    contract.TranscriptionRepository
	natsPub *pktNats.Publisher
	cfg     transcript.Config
	logger  logger.ILogger

	mu         sync.Mutex
	assemblers map[uuid.UUID]*transcript.Assembler
}

func NewTranscriptionService(
	pubSub *gochannel.GoChannel,
	repo contract.TranscriptionRepository,
	natsPub *pktNats.Publisher,
	cfg transcript.Config,
	log logger.ILogger,
) ITranscriptionService {
	return &transcriptionService{
		pubSub:     pubSub,
		repo:       repo,
		natsPub:    natsPub,
		cfg:        cfg,
		logger:     log,
		assemblers: make(map[uuid.UUID]*transcript.Assembler),
	}
}

func (s *transcriptionService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, audio.TranscriptTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *transcriptionService) processMessage(ctx context.Context, msg *message.Message) {
	var seg dto.PublishTranscriptSegmentMessage
	if err := json.Unmarshal(msg.Payload, &seg); err != nil {
		s.logger.Warn("TranscriptionService", "Dropping malformed segment", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	asm := s.assemblerFor(seg.SessionId)
	asm.AddSegmentAt(seg.Text, seg.IsFinal, seg.Timestamp)

	// Only finalized text reaches the supervisor channel; interim text is
	// provisional and would flicker.
	if seg.IsFinal && s.natsPub != nil {
		stats := asm.Stats()
		err := s.natsPub.Publish(ctx, events.New(events.TranscriptFinal, map[string]interface{}{
			"sessionId": seg.SessionId,
			"text":      seg.Text,
			"timestamp": seg.Timestamp,
			"segments":  stats.Segments,
			"words":     stats.TotalWords,
		}))
		if err != nil {
			s.logger.Warn("TranscriptionService", "Supervisor relay failed", map[string]interface{}{
				"session_id": seg.SessionId, "error": err.Error(),
			})
		}
	}

	msg.Ack()
}

// Formatted returns the current paragraph view of a live session.
func (s *transcriptionService) Formatted(sessionId uuid.UUID) (string, transcript.Stats, bool) {
	s.mu.Lock()
	asm, ok := s.assemblers[sessionId]
	s.mu.Unlock()
	if !ok {
		return "", transcript.Stats{}, false
	}
	return asm.Format(), asm.Stats(), true
}

// FinalizeSession flushes the assembler, persists the session summary and
// releases the per-session state.
func (s *transcriptionService) FinalizeSession(ctx context.Context, commercialId uuid.UUID, buildingId *uuid.UUID, summary *audio.Session) (*entity.TranscriptionSession, error) {
	if summary == nil {
		return nil, nil
	}

	s.mu.Lock()
	asm, ok := s.assemblers[summary.Id]
	delete(s.assemblers, summary.Id)
	s.mu.Unlock()

	transcription := summary.Transcript
	stats := map[string]interface{}{
		"duration": summary.Duration,
	}
	if ok {
		asm.Flush()
		transcription = asm.Format()
		st := asm.Stats()
		stats["segments"] = st.Segments
		stats["finalSegments"] = st.FinalSegments
		stats["words"] = st.TotalWords
		stats["chars"] = st.TotalChars
	}

	session := &entity.TranscriptionSession{
		Id:           summary.Id,
		CommercialId: commercialId,
		BuildingId:   buildingId,
		StartTime:    summary.StartTime,
		EndTime:      summary.EndTime,
		Transcript:   transcription,
		Stats:        stats,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("TranscriptionService", "Session persisted", map[string]interface{}{
		"session_id": session.Id, "commercial_id": commercialId,
	})
	return session, nil
}

func (s *transcriptionService) GetHistory(ctx context.Context, commercialId uuid.UUID) ([]*entity.TranscriptionSession, error) {
	return s.repo.FindByCommercial(ctx, commercialId)
}

func (s *transcriptionService) assemblerFor(sessionId uuid.UUID) *transcript.Assembler {
	s.mu.Lock()
	defer s.mu.Unlock()
	asm, ok := s.assemblers[sessionId]
	if !ok {
		asm = transcript.NewAssembler(s.cfg)
		s.assemblers[sessionId] = asm
	}
	return asm
}
