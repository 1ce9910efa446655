package codelab

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Messenger shows short status messages to the user.
type Messenger interface {
	ShowMessage(message string)
	ShowError(message string)
}

// Message is a message shown to the user.
type Message struct {
	Text    string    `json:"text"`
	IsError bool      `json:"isError,omitempty"`
	Time    time.Time `json:"time"`
}

// Recorder is a Messenger keeping the most recent messages. Each message is
// also logged and passed to the optional listener.
type Recorder struct {
	mux      sync.RWMutex
	limit    int
	messages []Message
	logger   logr.Logger
	listener func(message Message)
}

func (r *Recorder) ShowMessage(message string) {
	r.add(Message{Text: message, Time: time.Now()})
}

func (r *Recorder) ShowError(message string) {
	r.add(Message{Text: message, IsError: true, Time: time.Now()})
}

// Messages returns a copy of the recorded messages, oldest first.
func (r *Recorder) Messages() []Message {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message.
func (r *Recorder) Last() (Message, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// OnMessage sets a listener invoked for every new message.
func (r *Recorder) OnMessage(listener func(message Message)) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.listener = listener
}

func (r *Recorder) add(message Message) {
	if message.IsError {
		r.logger.Info("error message", "text", message.Text)
	} else {
		r.logger.V(1).Info("message", "text", message.Text)
	}
	r.mux.Lock()
	r.messages = append(r.messages, message)
	if overflow := len(r.messages) - r.limit; overflow > 0 {
		r.messages = append(r.messages[:0], r.messages[overflow:]...)
	}
	listener := r.listener
	r.mux.Unlock()
	if listener != nil {
		listener(message)
	}
}

// NewRecorder creates a Recorder keeping up to limit messages.
func NewRecorder(limit int, logger logr.Logger) *Recorder {
	if limit <= 0 {
		limit = 32
	}
	return &Recorder{limit: limit, logger: logger}
}
