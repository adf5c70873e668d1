package notify_test

import (
	"sync"
	"testing"

	"github.com/raysh454/buzzclient/internal/notify"
)

func TestStore_StartsHidden(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()
	snap := s.Snapshot()
	if snap.Error.Visible || snap.Info.Visible {
		t.Fatalf("expected both channels hidden, got %+v", snap)
	}
	if snap.Error.Message != nil || snap.Info.Message != nil {
		t.Fatalf("expected empty messages, got %+v", snap)
	}
}

func TestStore_TriggerErrorSetsMessageAndVisible(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()
	s.TriggerError("invalid credentials")

	st := s.State(notify.ChannelError)
	if st.Message != "invalid credentials" || !st.Visible {
		t.Fatalf("unexpected error state %+v", st)
	}
	if info := s.State(notify.ChannelInfo); info.Visible || info.Message != nil {
		t.Fatalf("info channel should be untouched, got %+v", info)
	}
}

func TestStore_TriggerInfoIndependentOfError(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()
	s.TriggerError("bad")
	s.TriggerInfo("check your inbox")
	s.Dismiss(notify.ChannelError)

	snap := s.Snapshot()
	if snap.Error.Visible {
		t.Error("error should be dismissed")
	}
	if snap.Error.Message != "bad" {
		t.Errorf("dismiss should keep message, got %v", snap.Error.Message)
	}
	if !snap.Info.Visible || snap.Info.Message != "check your inbox" {
		t.Errorf("unexpected info state %+v", snap.Info)
	}
}

func TestStore_SecondTriggerOverwrites(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()
	s.TriggerError("first")
	s.TriggerError("second")

	st := s.State(notify.ChannelError)
	if st.Message != "second" || !st.Visible {
		t.Fatalf("expected second message visible, got %+v", st)
	}
}

func TestStore_ObjectMessage(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()
	msg := map[string]any{"username": "must be provided"}
	s.TriggerError(msg)

	got, ok := s.State(notify.ChannelError).Message.(map[string]any)
	if !ok || got["username"] != "must be provided" {
		t.Fatalf("expected object message preserved, got %#v", s.State(notify.ChannelError).Message)
	}
}

func TestStore_ExplicitSetters(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()
	s.SetMessage(notify.ChannelInfo, "queued")
	if st := s.State(notify.ChannelInfo); st.Visible || st.Message != "queued" {
		t.Fatalf("SetMessage should not show, got %+v", st)
	}
	s.SetVisible(notify.ChannelInfo, true)
	if st := s.State(notify.ChannelInfo); !st.Visible {
		t.Fatalf("SetVisible(true) should show, got %+v", st)
	}
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()
	s := notify.NewStore()

	var events []notify.Event
	unsub := s.Subscribe(func(ev notify.Event) { events = append(events, ev) })

	if len(events) != 2 || events[0].Channel != notify.ChannelError || events[1].Channel != notify.ChannelInfo {
		t.Fatalf("expected initial error+info events, got %+v", events)
	}

	s.TriggerError("boom")
	if len(events) != 3 {
		t.Fatalf("expected one event per trigger, got %d", len(events))
	}
	last := events[2]
	if last.Channel != notify.ChannelError || last.State.Message != "boom" || !last.State.Visible {
		t.Fatalf("unexpected event %+v", last)
	}

	unsub()
	s.TriggerInfo("after")
	if len(events) != 3 {
		t.Fatalf("expected no events after unsubscribe, got %d", len(events))
	}
}

func TestParseChannel(t *testing.T) {
	t.Parallel()
	if ch, err := notify.ParseChannel("info"); err != nil || ch != notify.ChannelInfo {
		t.Fatalf("ParseChannel(info) = %q, %v", ch, err)
	}
	if _, err := notify.ParseChannel("warning"); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestStore_SubscriberMatchesSnapshotAfterRacingTriggerAndDismiss(t *testing.T) {
	t.Parallel()
	for i := 0; i < 50; i++ {
		s := notify.NewStore()
		var mu sync.Mutex
		var last notify.State
		s.Subscribe(func(ev notify.Event) {
			if ev.Channel != notify.ChannelError {
				return
			}
			mu.Lock()
			last = ev.State
			mu.Unlock()
		})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); s.TriggerError("boom") }()
		go func() { defer wg.Done(); s.Dismiss(notify.ChannelError) }()
		wg.Wait()

		mu.Lock()
		if got := s.State(notify.ChannelError); last != got {
			t.Fatalf("subscriber saw %+v, store holds %+v", last, got)
		}
		mu.Unlock()
	}
}
