package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"prospec-live/internal/audio"
	"prospec-live/internal/config"
	"prospec-live/internal/dto"
	"prospec-live/internal/entity"
	"prospec-live/internal/invitation"
	"prospec-live/internal/pkg/logger"
	"prospec-live/internal/realtime"
	"prospec-live/internal/transcript"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Field-agent console: starts a prospection session on a building, streams an
// audio source through the recognizer transport and prints the live transcript.
// With -partner it first sends a duo invitation and waits for the answer; with
// -token it also joins the building room and prints door updates pushed by the
// partner.
func main() {
	audioPath := flag.String("audio", "", "raw audio file to stream to the recognizer")
	buildingArg := flag.String("building", "", "building id (uuid)")
	agentArg := flag.String("agent", "", "this agent's id (uuid)")
	partnerArg := flag.String("partner", "", "partner agent id for a duo session (uuid)")
	token := flag.String("token", "", "JWT for the realtime room connection")
	flag.Parse()

	cfg := config.Load()
	lg := logger.NewIsolatedLogger("logs/agent.log")

	buildingId, err := uuid.Parse(*buildingArg)
	if err != nil {
		log.Fatalf("-building must be a uuid: %v", err)
	}
	agentId, err := uuid.Parse(*agentArg)
	if err != nil {
		log.Fatalf("-agent must be a uuid: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *partnerArg != "" {
		partnerId, err := uuid.Parse(*partnerArg)
		if err != nil {
			log.Fatalf("-partner must be a uuid: %v", err)
		}
		if !waitForPartner(ctx, cfg, lg, buildingId, agentId, partnerId) {
			return
		}
	}

	if *token != "" {
		go watchRoom(ctx, cfg, lg, buildingId, *token)
	}

	if *audioPath == "" {
		color.Cyan("No -audio source; waiting for room events only. Ctrl-C to quit.")
		<-ctx.Done()
		return
	}

	runSession(ctx, cfg, lg, *audioPath)
}

// waitForPartner sends the duo invitation and blocks until the partner answers
// or the agent gives up. Ctrl-C while waiting cancels the request.
func waitForPartner(ctx context.Context, cfg *config.Config, lg logger.ILogger, buildingId, agentId, partnerId uuid.UUID) bool {
	transport := invitation.NewHTTPTransport(cfg.App.BaseURL + "/api")
	coord := invitation.NewCoordinator(transport, cfg.Prospect.PollInterval, lg)

	h, err := coord.Send(ctx, buildingId, agentId, partnerId)
	if err != nil {
		color.Red("Invitation failed: %v", err)
		return false
	}

	color.Yellow("Invitation %s sent, waiting for partner...", h.RequestId)

	select {
	case <-ctx.Done():
		h.Cancel()
		res := <-h.Done()
		color.Yellow("Invitation %s: %s", h.RequestId, res.Status)
		return false
	case res := <-h.Done():
		if res.Err != nil {
			color.Red("Invitation lost: %v", res.Err)
			return false
		}
		switch res.Status {
		case entity.InvitationAccepted:
			color.Green("Partner accepted, duo session open")
			return true
		default:
			color.Red("Invitation %s", res.Status)
			return false
		}
	}
}

// watchRoom joins the building room and merges pushed events into a local
// view, printing each door update as it lands.
func watchRoom(ctx context.Context, cfg *config.Config, lg logger.ILogger, buildingId uuid.UUID, token string) {
	wsURL := "ws" + cfg.App.BaseURL[len("http"):] + "/api/ws/buildings/" + buildingId.String() + "?token=" + token

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		color.Red("Room connection failed: %v", err)
		return
	}
	defer conn.Close()

	view := realtime.NewBuildingView(entity.Building{Id: buildingId}, nil, lg)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := view.Apply(raw); err != nil {
			lg.Warn("AgentConsole", "Dropped room event", map[string]interface{}{"error": err.Error()})
			continue
		}
		printDoors(view)
	}
}

func printDoors(view *realtime.BuildingView) {
	for _, d := range view.Doors() {
		color.Green("  porte %s  étage %d  %s  (passage %d)", d.Numero, d.Floor, d.Status, d.PassageCount)
	}
}

// runSession streams the audio source and prints the assembled transcript,
// finishing with the session summary on Ctrl-C or end of source.
func runSession(ctx context.Context, cfg *config.Config, lg logger.ILogger, audioPath string) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	open := func(ctx context.Context) (audio.CaptureSource, error) {
		f, err := os.Open(audioPath)
		if err != nil {
			return nil, err
		}
		return audio.NewReaderCapture(f, 3200, cfg.Recognizer.StreamChunk), nil
	}

	manager := audio.NewTransportManager(cfg.Recognizer, open, pubSub, lg)
	asm := transcript.NewAssembler(transcript.Config{
		ParagraphGap:      cfg.Prospect.ParagraphGap,
		ParagraphMaxChars: cfg.Prospect.ParagraphMaxChars,
	})

	messages, err := pubSub.Subscribe(ctx, audio.TranscriptTopic)
	if err != nil {
		log.Fatalf("Unable to subscribe to transcript pipeline: %v", err)
	}
	go func() {
		for msg := range messages {
			var seg dto.PublishTranscriptSegmentMessage
			if err := json.Unmarshal(msg.Payload, &seg); err == nil {
				asm.AddSegmentAt(seg.Text, seg.IsFinal, seg.Timestamp)
				if seg.IsFinal {
					color.Green("▶ %s", seg.Text)
				} else {
					color.HiBlack("… %s", seg.Text)
				}
			}
			msg.Ack()
		}
	}()

	if err := manager.Start(ctx); err != nil {
		color.Red("%s", audio.UserMessage(err))
		return
	}
	color.Cyan("Session started (%s). Ctrl-C to stop.", manager.State())

	<-ctx.Done()

	summary := manager.Stop()
	asm.Flush()

	if summary != nil {
		stats := asm.Stats()
		color.Cyan("\nSession %s — %.1fs, %d segments, %d mots\n", summary.Id, summary.Duration, stats.Segments, stats.TotalWords)
		if formatted := asm.Format(); formatted != "" {
			color.White("%s", formatted)
		} else if summary.Transcript != "" {
			color.White("%s", summary.Transcript)
		}
	}
}
