package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressEvent_Accessors(t *testing.T) {
	t.Parallel()

	src := &struct{ id int }{id: 7}
	event := NewProgressEvent(src, EventNewMember, 3, 4096)

	for range 3 {
		assert.Same(t, src, event.Source())
		assert.Equal(t, EventNewMember, event.Kind())
		assert.Equal(t, int64(3), event.Counter())
		assert.Equal(t, int64(4096), event.Position())
	}

	// A copy is independent of the original value.
	copied := event
	assert.Equal(t, event, copied)
	assert.Equal(t, "new-member #3 @4096", event.String())
}

func TestProgressEvent_CarriesNegativeValues(t *testing.T) {
	t.Parallel()

	event := NewProgressEvent(nil, EventNewBlock, -1, -8)
	assert.Equal(t, int64(-1), event.Counter())
	assert.Equal(t, int64(-8), event.Position())
	assert.Nil(t, event.Source())
}

func TestEventKind_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind  EventKind
		want  string
		valid bool
	}{
		{EventNewBlock, "new-block", true},
		{EventNewStream, "new-stream", true},
		{EventNewMember, "new-member", true},
		{EventKind(3), "unknown", false},
		{EventKind(255), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.kind.String())
			assert.Equal(t, tt.valid, tt.kind.Valid())
		})
	}
}

func TestParseEventKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    EventKind
		wantErr bool
	}{
		{input: "block", want: EventNewBlock},
		{input: "new-block", want: EventNewBlock},
		{input: "NEW_STREAM", want: EventNewStream},
		{input: " member ", want: EventNewMember},
		{input: "chunk", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseEventKind(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestObserverError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := error(&ObserverError{Kind: EventNewStream, Index: 2, Err: cause})

	assert.ErrorIs(t, err, ErrObserver)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "observer 2 on new-stream")
	assert.Contains(t, err.Error(), "boom")
}

func TestObserverFunc(t *testing.T) {
	t.Parallel()

	var got ProgressEvent
	fn := ObserverFunc(func(e ProgressEvent) error {
		got = e
		return nil
	})

	var obs Observer = &fn
	want := NewProgressEvent("src", EventNewBlock, 1, 2)
	require.NoError(t, obs.OnProgress(want))
	assert.Equal(t, want, got)
}
