package assets

import "testing"

func TestEventBindings(t *testing.T) {
	t.Parallel()
	var bindings AssetEventBindings
	var got []AssetEventKind

	first := bindings.Bind(AssetEventFunc(func(event AssetEvent) {
		got = append(got, event.Kind)
	}))
	bindings.Bind(AssetEventFunc(func(event AssetEvent) {
		got = append(got, event.Kind)
	}))
	if bindings.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bindings.Len())
	}

	bindings.Dispatch(AssetEvent{Kind: EventBytesProcessed})
	if len(got) != 2 {
		t.Errorf("dispatched to %d listeners, want 2", len(got))
	}

	if !bindings.Unbind(first) {
		t.Error("Unbind() = false for a live binding")
	}
	if bindings.Unbind(first) {
		t.Error("Unbind() = true for a dead binding")
	}
	got = got[:0]
	bindings.Dispatch(AssetEvent{Kind: EventUnloaded})
	if len(got) != 1 {
		t.Errorf("dispatched to %d listeners after unbind, want 1", len(got))
	}

	bindings.Clear()
	if bindings.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", bindings.Len())
	}
}

func TestChannelListener(t *testing.T) {
	t.Parallel()
	ch := make(chan AssetEvent, 1)
	var bindings AssetEventBindings
	bindings.Bind(ChannelListener(ch))

	bindings.Dispatch(AssetEvent{Kind: EventBytesProcessed})
	select {
	case event := <-ch:
		if event.Kind != EventBytesProcessed {
			t.Errorf("event kind = %v", event.Kind)
		}
	default:
		t.Error("no event arrived on the channel")
	}
}

func TestEventKindPredicates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind    AssetEventKind
		done    bool
		failure bool
	}{
		{EventAwaitsResolution, false, false},
		{EventAwaitsDeferredJob, false, false},
		{EventBytesReadyToProcess, false, false},
		{EventBytesProcessed, true, false},
		{EventUnloaded, true, false},
		{EventFetchingFailed, true, true},
		{EventProcessingFailed, true, true},
		{EventAwaitsStoring, false, false},
		{EventBytesReadyToStore, false, false},
		{EventBytesStored, true, false},
		{EventStoringFailed, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.IsDone(); got != tt.done {
				t.Errorf("IsDone() = %v, want %v", got, tt.done)
			}
			if got := tt.kind.InProgress(); got == tt.done {
				t.Errorf("InProgress() = %v, want %v", got, !tt.done)
			}
			if got := tt.kind.Failure(); got != tt.failure {
				t.Errorf("Failure() = %v, want %v", got, tt.failure)
			}
			if got := tt.kind.Success(); got == tt.failure {
				t.Errorf("Success() = %v, want %v", got, !tt.failure)
			}
		})
	}
}
