package workers

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/mocks"
	"chat-live/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fanoutUnderTest(registry contract.IRegistry, sinkTimeout time.Duration) (*EventFanout, *observability.Monitoring) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := observability.NewMonitoring()
	return NewEventFanout(log, registry, monitoring,
		make(chan event.Event, 8), make(chan event.Event, 8), sinkTimeout), monitoring
}

func session(id string, sink contract.EventSink) contract.Session {
	return contract.Session{
		Connection: domain.Connection{
			ID:          id,
			Identity:    domain.Identity{UserID: "uid-" + id, Username: "user-" + id},
			ConnectedAt: time.Now().UTC(),
		},
		Sink: sink,
	}
}

func TestEventFanout_Delivers_To_Every_Session(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	fanout, monitoring := fanoutUnderTest(mockRegistry, time.Second)

	// Given two registered sessions sharing the mock sink
	mockRegistry.EXPECT().All().Return([]contract.Session{
		session("c1", mockSink),
		session("c2", mockSink),
	}).Times(1)

	var delivered []domain.ChatEvent
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, e domain.ChatEvent) {
			delivered = append(delivered, e)
		}).Return(nil).
		Times(2)

	// When a sanitized message is fanned out
	fanout.Fanout(context.Background(), event.Event{
		Type:      event.DomainType,
		CreatedAt: time.Now().UTC(),
		Payload: event.SanitizedMessage{
			Author:  "alice",
			Content: "hello",
			At:      time.Now().UTC(),
		},
	})

	// Then both recipients got the same wire event
	req.Len(delivered, 2)
	req.Equal("alice", delivered[0].Username)
	req.Equal("hello", delivered[0].Message)
	req.Equal(domain.KindUser, delivered[0].Kind)
	req.EqualValues(1, monitoring.GetLatest().MessagesBroadcast)
}

func TestEventFanout_Skips_Excluded_Connection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	joinerSink := mocks.NewMockEventSink(ctrl)
	otherSink := mocks.NewMockEventSink(ctrl)
	fanout, _ := fanoutUnderTest(mockRegistry, time.Second)

	mockRegistry.EXPECT().All().Return([]contract.Session{
		session("joiner", joinerSink),
		session("other", otherSink),
	}).Times(1)

	// The excluded connection must never be consumed
	joinerSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)

	var got domain.ChatEvent
	otherSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, e domain.ChatEvent) { got = e }).
		Return(nil).
		Times(1)

	fanout.Fanout(context.Background(), event.Event{
		Type:      event.DomainType,
		CreatedAt: time.Now().UTC(),
		Exclude:   "joiner",
		Payload:   event.SystemNotice{Message: "user-joiner has joined the chat", At: time.Now().UTC()},
	})

	req.Equal(domain.KindSystem, got.Kind)
	req.Equal(domain.SystemUsername, got.Username)
}

func TestEventFanout_Slow_Sink_Does_Not_Abort_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)
	sinkTimeout := 20 * time.Millisecond
	fanout, monitoring := fanoutUnderTest(mockRegistry, sinkTimeout)

	mockRegistry.EXPECT().All().Return([]contract.Session{
		session("slow", slowSink),
		session("fast", fastSink),
	}).Times(1)

	// Given a recipient that blocks until the per-sink deadline fires
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.ChatEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)
	fastSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout.Fanout(context.Background(), event.Event{
		Type:      event.DomainType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.SystemNotice{Message: "notice", At: time.Now().UTC()},
	})

	// Then the failed delivery was counted, not propagated
	req.EqualValues(1, monitoring.GetLatest().DeliveriesDropped)
}
