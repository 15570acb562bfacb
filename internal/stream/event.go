package stream

import (
	"encoding/json"
	"errors"

	"ailawyer/internal/model"
)

type Kind int

const (
	KindChunk Kind = iota + 1
	KindDone
	KindError
)

// Done is the payload of the terminal success event. Exactly one of the
// ID fields is set, depending on what the request produced.
type Done struct {
	SessionID  uint
	ContractID uint
	AnalysisID uint
	Sources    []model.Source
}

type Event struct {
	Kind  Kind
	Chunk string
	Done  Done
	Error string
	Code  string
}

func ChunkEvent(text string) Event { return Event{Kind: KindChunk, Chunk: text} }

func DoneEvent(d Done) Event { return Event{Kind: KindDone, Done: d} }

func ErrorEvent(msg, code string) Event { return Event{Kind: KindError, Error: msg, Code: code} }

func (e Event) Terminal() bool { return e.Kind == KindDone || e.Kind == KindError }

type chunkWire struct {
	Chunk string `json:"chunk"`
}

type doneWire struct {
	Done       bool           `json:"done"`
	SessionID  uint           `json:"session_id,omitempty"`
	ContractID uint           `json:"contract_id,omitempty"`
	AnalysisID uint           `json:"analysis_id,omitempty"`
	Sources    []model.Source `json:"sources"`
}

type errorWire struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindChunk:
		return json.Marshal(chunkWire{Chunk: e.Chunk})
	case KindDone:
		sources := e.Done.Sources
		if sources == nil {
			sources = []model.Source{}
		}
		return json.Marshal(doneWire{
			Done:       true,
			SessionID:  e.Done.SessionID,
			ContractID: e.Done.ContractID,
			AnalysisID: e.Done.AnalysisID,
			Sources:    sources,
		})
	case KindError:
		return json.Marshal(errorWire{Error: e.Error, Code: e.Code})
	default:
		return nil, errors.New("stream: event has no kind")
	}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w struct {
		Chunk      *string        `json:"chunk"`
		Done       bool           `json:"done"`
		SessionID  uint           `json:"session_id"`
		ContractID uint           `json:"contract_id"`
		AnalysisID uint           `json:"analysis_id"`
		Sources    []model.Source `json:"sources"`
		Error      *string        `json:"error"`
		Code       string         `json:"code"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Error != nil:
		*e = ErrorEvent(*w.Error, w.Code)
	case w.Done:
		*e = DoneEvent(Done{SessionID: w.SessionID, ContractID: w.ContractID, AnalysisID: w.AnalysisID, Sources: w.Sources})
	case w.Chunk != nil:
		*e = ChunkEvent(*w.Chunk)
	default:
		return errors.New("stream: unrecognised event")
	}
	return nil
}
