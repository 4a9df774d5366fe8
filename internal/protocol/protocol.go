// Package protocol encodes and decodes responsiveness transitions sent by
// the detector over the pipe.
//
// The wire format is one line per event:
//
//	false          the UI thread has just become unresponsive
//	true|<ms>      the UI thread recovered after <ms> milliseconds
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates the tag from the duration field.
const Delimiter = "|"

const (
	tagResponsive = "true"
	tagFrozen     = "false"
)

var (
	// ErrMalformedMessage is returned for a "true" line whose duration is
	// missing or not a non-negative integer.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownTag is returned when the first field is neither "true" nor "false".
	ErrUnknownTag = errors.New("unknown tag")
)

// Kind tags an Event.
type Kind int

const (
	KindFrozen Kind = iota
	KindResponsive
)

func (k Kind) String() string {
	if k == KindResponsive {
		return "responsive"
	}
	return "frozen"
}

// Event is a single transition reported by the detector. DurationMs is
// only meaningful for KindResponsive, where it holds the length of the
// freeze that just ended.
type Event struct {
	Kind       Kind
	DurationMs int64
}

// Frozen returns the "became unresponsive" event.
func Frozen() Event {
	return Event{Kind: KindFrozen}
}

// Responsive returns the "became responsive after ms" event.
func Responsive(ms int64) Event {
	return Event{Kind: KindResponsive, DurationMs: ms}
}

func (e Event) String() string {
	if e.Kind == KindResponsive {
		return fmt.Sprintf("responsive(%dms)", e.DurationMs)
	}
	return "frozen"
}

// DecodeError reports the line that failed to decode.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode renders e as a newline-terminated wire line.
func Encode(e Event) string {
	if e.Kind == KindResponsive {
		return tagResponsive + Delimiter + strconv.FormatInt(e.DurationMs, 10) + "\n"
	}
	return tagFrozen + "\n"
}

// Decode parses one wire line. A trailing line terminator is ignored.
func Decode(line string) (Event, error) {
	trimmed := strings.TrimRight(line, "\r\n")
	fields := strings.Split(trimmed, Delimiter)

	switch fields[0] {
	case tagFrozen:
		return Frozen(), nil
	case tagResponsive:
		if len(fields) < 2 {
			return Event{}, &DecodeError{Line: trimmed, Err: ErrMalformedMessage}
		}
		// ParseUint rejects signs, so "-5" and "+5" are both malformed
		ms, err := strconv.ParseUint(fields[1], 10, 63)
		if err != nil {
			return Event{}, &DecodeError{Line: trimmed, Err: fmt.Errorf("%w: duration %q", ErrMalformedMessage, fields[1])}
		}
		return Responsive(int64(ms)), nil
	default:
		return Event{}, &DecodeError{Line: trimmed, Err: fmt.Errorf("%w: %q", ErrUnknownTag, fields[0])}
	}
}
