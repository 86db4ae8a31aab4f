package realtime

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer

	err := WriteFrame(&buf, Event{
		Kind:      KindHeartbeat,
		Payload:   map[string]any{"message": "ping"},
		Timestamp: 1700000000000,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"data: {\"type\":\"heartbeat\",\"data\":{\"message\":\"ping\"},\"timestamp\":1700000000000}\n\n",
		buf.String(),
	)
}

func TestWriteFrame_IncludesOrigin(t *testing.T) {
	var buf bytes.Buffer

	err := WriteFrame(&buf, Event{Kind: KindChatMessage, Payload: map[string]any{}, Timestamp: 1, OriginID: "student-7"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"origin_id":"student-7"`)
}

func TestReadFrames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{
			name:  "single frame",
			input: "data: {\"type\":\"connection\",\"data\":{},\"timestamp\":1}\n\n",
			want:  []Kind{KindConnection},
		},
		{
			name: "comments and unknown fields are ignored",
			input: ": keepalive\n\n" +
				"event: message\n" +
				"data: {\"type\":\"heartbeat\",\"data\":{},\"timestamp\":2}\n\n",
			want: []Kind{KindHeartbeat},
		},
		{
			name:  "multi-line data is joined",
			input: "data: {\"type\":\"sos_alert\",\n" + "data: \"data\":{},\"timestamp\":3}\n\n",
			want:  []Kind{KindSOSAlert},
		},
		{
			name: "undecodable frames are skipped",
			input: "data: not json\n\n" +
				"data: {\"type\":\"wellness_update\",\"data\":{},\"timestamp\":4}\n\n",
			want: []Kind{KindWellnessUpdate},
		},
		{
			name:  "trailing partial frame is dropped",
			input: "data: {\"type\":\"chat_message\",\"data\":{},\"timestamp\":5}",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Kind
			err := ReadFrames(strings.NewReader(tt.input), func(e Event) error {
				got = append(got, e.Kind)
				return nil
			})

			assert.ErrorIs(t, err, io.EOF)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFrames_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	input := "data: {\"type\":\"connection\",\"data\":{},\"timestamp\":1}\n\n" +
		"data: {\"type\":\"heartbeat\",\"data\":{},\"timestamp\":2}\n\n"

	calls := 0
	err := ReadFrames(strings.NewReader(input), func(Event) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := []Event{
		{Kind: KindConnection, Payload: map[string]any{"message": connectedMessage}, Timestamp: 10},
		{Kind: KindSOSAlert, Payload: map[string]any{"subject_id": "u-1", "message": "line one\nline two"}, Timestamp: 11},
	}
	for _, e := range in {
		require.NoError(t, WriteFrame(&buf, e))
	}

	var out []Event
	err := ReadFrames(&buf, func(e Event) error {
		out = append(out, e)
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, in, out)
}
