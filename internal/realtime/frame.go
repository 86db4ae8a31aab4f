package realtime

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const maxFrameSize = 1024 * 1024

// WriteFrame writes one event in text/event-stream framing:
// "data: <json>\n\n".
func WriteFrame(w io.Writer, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(payload) + 8)
	buf.WriteString("data: ")
	buf.Write(payload)
	buf.WriteString("\n\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrames parses an event stream and calls fn once per complete frame.
// Comment lines and non-data fields are ignored; multi-line data fields are
// joined with "\n" as in the EventSource algorithm. Frames that do not
// decode as an Event are skipped. It returns the first error from fn, the
// reader's error, or io.EOF when the stream ends cleanly.
func ReadFrames(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	var data []string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if len(data) == 0 {
				continue
			}
			raw := strings.Join(data, "\n")
			data = data[:0]

			var e Event
			if err := json.Unmarshal([]byte(raw), &e); err != nil {
				continue
			}
			if err := fn(e); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			data = append(data, strings.TrimPrefix(value, " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
