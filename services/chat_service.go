package services

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/runtime"
)

// IChatService is the session-layer surface the transport talks to.
// It keeps handlers decoupled from the engine internals.
type IChatService interface {
	Join(conn domain.Connection, sink contract.EventSink) error
	Leave(connectionID string)
	Post(connectionID, message string)
	Roster() []domain.Connection
}

type ChatService struct {
	engine *runtime.Engine
}

func NewChatService(engine *runtime.Engine) *ChatService {
	return &ChatService{engine: engine}
}

func (s *ChatService) Join(conn domain.Connection, sink contract.EventSink) error {
	return s.engine.Admit(conn, sink)
}

func (s *ChatService) Leave(connectionID string) {
	s.engine.Remove(connectionID)
}

func (s *ChatService) Post(connectionID, message string) {
	s.engine.OnSend(connectionID, message)
}

func (s *ChatService) Roster() []domain.Connection {
	return s.engine.Roster()
}
