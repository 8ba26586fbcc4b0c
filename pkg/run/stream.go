package run

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Decoder reads execution events from a server-sent-event stream. An
// "event:" line buffers the event name for the "data:" line that follows;
// blank lines and ":" comments (keepalives) are skipped. The payload is
// self-describing, so a stream without "event:" lines also decodes.
type Decoder struct {
	scanner *bufio.Scanner
	pending string
}

// NewDecoder wraps r for frame-by-frame reading.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	// Node outputs ride inside frames, which can outgrow the default
	// token size.
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: s}
}

// Next returns the next event, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (*Event, error) {
	for d.scanner.Scan() {
		line := strings.TrimRight(d.scanner.Text(), "\r")
		switch {
		case line == "" || strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "event:"):
			d.pending = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			name := d.pending
			d.pending = ""
			return decodeFrame(name, payload)
		}
	}
	if err := d.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read event stream")
	}
	return nil, io.EOF
}

func decodeFrame(name, payload string) (*Event, error) {
	if payload == "" {
		return &Event{Event: name}, nil
	}
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, errors.Wrapf(err, "decode %q frame", name)
	}
	if e.Event == "" {
		e.Event = name
	}
	return &e, nil
}

// Consume reads events from r until it ends and hands each one to fn,
// stopping early if ctx is done or fn returns an error. A clean end of
// stream returns nil.
func Consume(ctx context.Context, r io.Reader, fn func(*Event) error) error {
	d := NewDecoder(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		e, err := d.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}

// WriteSSE writes one event in wire framing. The counterpart of Decoder,
// used by demo drivers and tests to synthesize streams.
func WriteSSE(w io.Writer, e *Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrapf(err, "encode %s frame", e.Event)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Event, payload); err != nil {
		return errors.Wrap(err, "write event frame")
	}
	return nil
}
