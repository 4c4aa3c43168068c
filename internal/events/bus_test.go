package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan BackendInitEvent, 1)

	unsub := bus.Subscribe(func(e BackendInitEvent) {
		received <- e
	})
	defer unsub()

	event := BackendInitEvent{
		Backend:   "alsa",
		Ready:     true,
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.Backend != event.Backend || !got.Ready {
		t.Errorf("received %+v, want %+v", got, event)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan DevicesProbedEvent, 1)
	received2 := make(chan DevicesProbedEvent, 1)

	unsub1 := bus.Subscribe(func(e DevicesProbedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e DevicesProbedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(DevicesProbedEvent{Backend: "oss", Kind: "output", Devices: []string{"OSS Default"}})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan DeviceOpenedEvent, 1)

	unsub := bus.Subscribe(func(e DeviceOpenedEvent) {
		received <- e
	})

	bus.Publish(DeviceOpenedEvent{Backend: "null"})
	<-received

	unsub()

	bus.Publish(DeviceOpenedEvent{Backend: "null"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	initReceived := make(chan bool, 1)
	changedReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ BackendInitEvent) {
		initReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ DevicesChangedEvent) {
		changedReceived <- true
	})
	defer unsub2()

	bus.Publish(BackendInitEvent{Backend: "pulse"})
	<-initReceived

	select {
	case <-changedReceived:
		t.Fatal("DevicesChanged subscriber should NOT have received BackendInitEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(DevicesChangedEvent{Path: "/dev/snd/pcmC0D0p", Action: "added"})
	<-changedReceived

	select {
	case <-initReceived:
		t.Fatal("BackendInit subscriber should NOT have received DevicesChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ DevicesChangedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(DevicesChangedEvent{
					Action:    "added",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("expected no-op unsubscribe")
	}
	unsub()
}

func TestEventJSONSerialization(t *testing.T) {
	tests := []struct {
		name     string
		event    any
		wantKeys []string
	}{
		{
			"BackendInitEvent",
			BackendInitEvent{Backend: "alsa", Ready: false, Timestamp: "2025-01-27T10:30:00Z"},
			[]string{"backend", "ready", "timestamp"},
		},
		{
			"DevicesProbedEvent",
			DevicesProbedEvent{Backend: "alsa", Kind: "output", Devices: []string{}},
			[]string{"backend", "kind", "devices"},
		},
		{
			"DeviceOpenedEvent failure",
			DeviceOpenedEvent{Backend: "oss", Name: "/dev/dsp", Direction: "playback", Error: "permission denied"},
			[]string{"backend", "name", "direction", "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}

			var result map[string]any
			if unmarshalErr := json.Unmarshal(data, &result); unmarshalErr != nil {
				t.Fatalf("Failed to unmarshal: %v", unmarshalErr)
			}

			for _, key := range tt.wantKeys {
				if _, ok := result[key]; !ok {
					t.Errorf("missing key %q in %s", key, data)
				}
			}
		})
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[DevicesChangedEvent](bus, ch)
	defer unsub()

	event := DevicesChangedEvent{Path: "/dev/dsp1", Action: "removed"}
	bus.Publish(event)

	received := <-ch
	changed, ok := received.(DevicesChangedEvent)
	if !ok {
		t.Fatalf("Expected DevicesChangedEvent, got %T", received)
	}
	if changed.Path != event.Path {
		t.Errorf("Expected path %s, got %s", event.Path, changed.Path)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any)

	unsub := SubscribeToChannel[DevicesChangedEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(DevicesChangedEvent{Action: "added"})
		done <- true
	}()

	<-done
}
