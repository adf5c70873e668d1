// Package notify holds the process-wide error and info notification state
// that the UI layer renders as modals.
package notify

import (
	"fmt"

	"github.com/raysh454/buzzclient/internal/observable"
)

// Channel names one of the two independent notification slots.
type Channel string

const (
	ChannelError Channel = "error"
	ChannelInfo  Channel = "info"
)

// ParseChannel accepts "error" or "info".
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelError, ChannelInfo:
		return Channel(s), nil
	default:
		return "", fmt.Errorf("unknown notification channel %q", s)
	}
}

// State is the message and visibility of one channel. Message is whatever the
// caller triggered with: usually a string, sometimes a decoded JSON object
// such as a field-to-message map.
type State struct {
	Message any  `json:"message"`
	Visible bool `json:"visible"`
}

// Event reports the new state of a channel.
type Event struct {
	Channel Channel `json:"channel"`
	State   State   `json:"state"`
}

// Snapshot is the state of both channels at one point in time.
type Snapshot struct {
	Error State `json:"error"`
	Info  State `json:"info"`
}

// Store owns both channels. Messages are not queued: a trigger while a
// channel is visible replaces its message in place. Nothing is dismissed
// automatically.
type Store struct {
	errCh  *observable.Value[State]
	infoCh *observable.Value[State]
}

// NewStore returns a Store with both channels hidden and empty.
func NewStore() *Store {
	return &Store{
		errCh:  observable.New(State{}),
		infoCh: observable.New(State{}),
	}
}

func (s *Store) channel(ch Channel) *observable.Value[State] {
	switch ch {
	case ChannelError:
		return s.errCh
	case ChannelInfo:
		return s.infoCh
	default:
		panic(fmt.Sprintf("notify: unknown channel %q", ch))
	}
}

// TriggerError sets the error message, then marks the error channel visible.
// Subscribers observe both changes as a single event.
func (s *Store) TriggerError(message any) {
	s.trigger(ChannelError, message)
}

// TriggerInfo sets the info message, then marks the info channel visible.
func (s *Store) TriggerInfo(message any) {
	s.trigger(ChannelInfo, message)
}

func (s *Store) trigger(ch Channel, message any) {
	s.channel(ch).Update(func(st State) State {
		st.Message = message
		st.Visible = true
		return st
	})
}

// SetMessage replaces a channel's message without touching visibility.
func (s *Store) SetMessage(ch Channel, message any) {
	s.channel(ch).Update(func(st State) State {
		st.Message = message
		return st
	})
}

// SetVisible shows or hides a channel without touching its message.
func (s *Store) SetVisible(ch Channel, visible bool) {
	s.channel(ch).Update(func(st State) State {
		st.Visible = visible
		return st
	})
}

// Dismiss hides a channel. The message is kept until the next trigger.
func (s *Store) Dismiss(ch Channel) {
	s.SetVisible(ch, false)
}

// State returns the current state of one channel.
func (s *Store) State(ch Channel) State {
	return s.channel(ch).Get()
}

// Snapshot returns the current state of both channels.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Error: s.errCh.Get(), Info: s.infoCh.Get()}
}

// Subscribe calls fn with the current error state, then the current info
// state, then once per change on either channel until unsubscribe is called.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	unsubErr := s.errCh.Subscribe(func(st State) {
		fn(Event{Channel: ChannelError, State: st})
	})
	unsubInfo := s.infoCh.Subscribe(func(st State) {
		fn(Event{Channel: ChannelInfo, State: st})
	})
	return func() {
		unsubErr()
		unsubInfo()
	}
}
