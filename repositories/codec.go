package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored with the protobuf wire format so that the value log
// stays compact and readable by any protobuf tooling.
//
//	message Participant { string name = 1; sint64 last_heartbeat = 2; }
//	message Message {
//	  string id = 1; string from = 2; string to = 3;
//	  string text = 4; string kind = 5; sint64 at = 6;
//	}
const (
	participantName          protowire.Number = 1
	participantLastHeartbeat protowire.Number = 2

	messageID   protowire.Number = 1
	messageFrom protowire.Number = 2
	messageTo   protowire.Number = 3
	messageText protowire.Number = 4
	messageKind protowire.Number = 5
	messageAt   protowire.Number = 6
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(t.UnixNano()))
}

func EncodeParticipant(p DiskParticipant) []byte {
	var b []byte
	b = appendString(b, participantName, p.Name)
	b = appendTime(b, participantLastHeartbeat, p.LastHeartbeat)
	return b
}

func DecodeParticipant(b []byte) (DiskParticipant, error) {
	var p DiskParticipant
	err := consumeFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case participantName:
			p.Name = s
		case participantLastHeartbeat:
			p.LastHeartbeat = time.Unix(0, v).UTC()
		}
	})
	return p, err
}

func EncodeMessage(m DiskMessage) []byte {
	var b []byte
	b = appendString(b, messageID, m.ID.String())
	b = appendString(b, messageFrom, m.From)
	b = appendString(b, messageTo, m.To)
	b = appendString(b, messageText, m.Text)
	b = appendString(b, messageKind, m.Kind)
	b = appendTime(b, messageAt, m.At)
	return b
}

func DecodeMessage(b []byte) (DiskMessage, error) {
	var m DiskMessage
	var rawID string
	err := consumeFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case messageID:
			rawID = s
		case messageFrom:
			m.From = s
		case messageTo:
			m.To = s
		case messageText:
			m.Text = s
		case messageKind:
			m.Kind = s
		case messageAt:
			m.At = time.Unix(0, v).UTC()
		}
	})
	if err != nil {
		return DiskMessage{}, err
	}
	m.ID, err = uuid.Parse(rawID)
	if err != nil {
		return DiskMessage{}, fmt.Errorf("message id %q: %w", rawID, err)
	}
	return m, nil
}

// consumeFields walks a wire-encoded record and hands every known field to fn.
// Unknown field numbers and types are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, s string, v int64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, s, 0)
			b = b[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, "", protowire.DecodeZigZag(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
