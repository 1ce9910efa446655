package server

import (
	"github.com/viant/jsonrpc/transport/server/base"
)

// sessionStore keeps streamable sessions and disconnects the device of a
// session once the session is deleted, either by the client or by the
// transport's idle sweeper.
type sessionStore struct {
	base.SessionStore
	server *Server
}

func (s *sessionStore) Delete(id string) {
	if aSession, ok := s.SessionStore.Get(id); ok {
		if handler, ok := aSession.Handler.(*Handler); ok {
			s.server.disconnect(handler.device)
		}
	}
	s.SessionStore.Delete(id)
}

func newSessionStore(server *Server) *sessionStore {
	return &sessionStore{SessionStore: base.NewMemorySessionStore(), server: server}
}
