package runtime

import (
	"chat-live/domain"
	"chat-live/observability"
	"chat-live/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	events chan domain.ChatEvent
}

func newChanSink() *chanSink {
	return &chanSink{events: make(chan domain.ChatEvent, 16)}
}

func (s *chanSink) Consume(_ context.Context, e domain.ChatEvent) error {
	select {
	case s.events <- e:
		return nil
	default:
		return fmt.Errorf("test sink full")
	}
}

// startEngine spins up the full pipeline (moderation + fanout) and returns
// a cleanup function that waits for the supervised workers to stop.
func startEngine(t *testing.T) (*Engine, *Registry) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	supervisor := workers.NewSupervisor(log)
	registry := NewRegistry()
	monitoring := observability.NewMonitoring()
	engine := NewEngine(log, supervisor, registry, monitoring,
		64, 100*time.Millisecond, time.Minute, '*')

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = engine.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return engine, registry
}

func waitEvent(t *testing.T, sink *chanSink) domain.ChatEvent {
	t.Helper()
	select {
	case e := <-sink.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return domain.ChatEvent{}
	}
}

func expectSilence(t *testing.T, sink *chanSink) {
	t.Helper()
	select {
	case e := <-sink.events:
		t.Fatalf("expected no event, got %+v", e)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestEngine_Join_Notice_Not_Echoed_To_Joiner(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	// Scenario A: with only one connection present, zero events delivered
	aliceSink := newChanSink()
	alice := newConnection("alice")
	req.NoError(engine.Admit(alice, aliceSink))

	expectSilence(t, aliceSink)
}

func TestEngine_Join_Notice_Reaches_Other_Connections(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	aliceSink, bobSink := newChanSink(), newChanSink()
	alice, bob := newConnection("alice"), newConnection("bob")

	req.NoError(engine.Admit(alice, aliceSink))
	req.NoError(engine.Admit(bob, bobSink))

	// Then alice is told about bob, and bob hears nothing
	evt := waitEvent(t, aliceSink)
	req.Equal(domain.KindSystem, evt.Kind)
	req.Equal(domain.SystemUsername, evt.Username)
	req.Equal("bob has joined the chat", evt.Message)
	expectSilence(t, bobSink)
}

func TestEngine_Broadcast_Reaches_Everyone_Including_Sender(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	aliceSink, bobSink := newChanSink(), newChanSink()
	alice, bob := newConnection("alice"), newConnection("bob")
	req.NoError(engine.Admit(alice, aliceSink))
	req.NoError(engine.Admit(bob, bobSink))
	waitEvent(t, aliceSink) // drain bob's join notice

	// Scenario B: alice posts, both alice and bob receive it
	engine.OnSend(alice.ID, "hi")

	for _, sink := range []*chanSink{aliceSink, bobSink} {
		evt := waitEvent(t, sink)
		req.Equal(domain.KindUser, evt.Kind)
		req.Equal("alice", evt.Username)
		req.Equal("hi", evt.Message)
		req.NotEmpty(evt.ID)
	}
}

func TestEngine_Blank_Message_Is_Dropped(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	aliceSink := newChanSink()
	alice := newConnection("alice")
	req.NoError(engine.Admit(alice, aliceSink))

	engine.OnSend(alice.ID, "   \t  \n ")

	expectSilence(t, aliceSink)
}

func TestEngine_Send_After_Removal_Is_Dropped(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	aliceSink, bobSink := newChanSink(), newChanSink()
	alice, bob := newConnection("alice"), newConnection("bob")
	req.NoError(engine.Admit(alice, aliceSink))
	req.NoError(engine.Admit(bob, bobSink))
	waitEvent(t, aliceSink) // drain bob's join notice

	// Scenario D: alice disconnects, then a late send for alice arrives
	engine.Remove(alice.ID)
	engine.OnSend(alice.ID, "late")

	// Then bob observes the leave notice and nothing referencing "late"
	evt := waitEvent(t, bobSink)
	req.Equal(domain.KindSystem, evt.Kind)
	req.Equal("alice has left the chat", evt.Message)
	expectSilence(t, bobSink)
}

func TestEngine_Remove_Is_Idempotent_For_Presence(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	aliceSink, bobSink := newChanSink(), newChanSink()
	alice, bob := newConnection("alice"), newConnection("bob")
	req.NoError(engine.Admit(alice, aliceSink))
	req.NoError(engine.Admit(bob, bobSink))
	waitEvent(t, aliceSink) // drain bob's join notice

	// When racing disconnect signals remove alice twice
	engine.Remove(alice.ID)
	engine.Remove(alice.ID)

	// Then a single leave notice is produced
	evt := waitEvent(t, bobSink)
	req.Equal("alice has left the chat", evt.Message)
	expectSilence(t, bobSink)
}

func TestEngine_Censors_Forbidden_Words(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	aliceSink, bobSink := newChanSink(), newChanSink()
	alice, bob := newConnection("alice"), newConnection("bob")
	req.NoError(engine.Admit(alice, aliceSink))
	req.NoError(engine.Admit(bob, bobSink))
	waitEvent(t, aliceSink) // drain bob's join notice

	// "merde" is part of the embedded dictionary
	engine.OnSend(alice.ID, "oh merde alors")

	evt := waitEvent(t, bobSink)
	req.Equal("oh ***** alors", evt.Message)
}

func TestEngine_Roster_Reflects_Registry(t *testing.T) {
	req := require.New(t)
	engine, _ := startEngine(t)

	alice, bob := newConnection("alice"), newConnection("bob")
	req.NoError(engine.Admit(alice, newChanSink()))
	req.NoError(engine.Admit(bob, newChanSink()))

	roster := engine.Roster()
	req.Len(roster, 2)

	engine.Remove(alice.ID)
	req.Len(engine.Roster(), 1)
	req.Equal("bob", engine.Roster()[0].Username())
}
