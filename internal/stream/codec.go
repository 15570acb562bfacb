package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const dataPrefix = "data:"

// Encoder writes events as server-sent "data: <json>\n\n" frames.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	if _, err := e.w.Write(frame); err != nil {
		return err
	}
	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Decoder parses frames incrementally. Input may be split anywhere; an
// incomplete line waits for the next Feed. Lines that are not data frames
// or carry malformed JSON are skipped.
type Decoder struct {
	buf []byte
}

func (d *Decoder) Feed(p []byte) []Event {
	d.buf = append(d.buf, p...)
	var events []Event
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSpace(d.buf[:i])
		d.buf = d.buf[i+1:]
		if ev, ok := parseLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Flush parses whatever is left once the input has ended.
func (d *Decoder) Flush() []Event {
	line := bytes.TrimSpace(d.buf)
	d.buf = nil
	if ev, ok := parseLine(line); ok {
		return []Event{ev}
	}
	return nil
}

// Decode reads r to the end, handing every event to fn. It stops early
// when fn returns an error.
func Decode(r io.Reader, fn func(Event) error) error {
	var d Decoder
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, ev := range d.Feed(buf[:n]) {
				if ferr := fn(ev); ferr != nil {
					return ferr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			for _, ev := range d.Flush() {
				if ferr := fn(ev); ferr != nil {
					return ferr
				}
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func parseLine(line []byte) (Event, bool) {
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return Event{}, false
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, false
	}
	return ev, true
}
