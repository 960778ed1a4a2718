package internal

import (
	"chat-room/repositories"
	"fmt"
	"strings"
)

const timeLayout = "15:04:05"

// RecordMapper decodes the participant and message records of the room.
func RecordMapper(key string, val []byte) InspectRow {
	switch {
	case repositories.IsParticipantKey(key):
		p, err := repositories.DecodeParticipant(val)
		if err != nil {
			return corrupted(key, err)
		}
		return InspectRow{
			Key:       key,
			Type:      "PARTICIPANT",
			Timestamp: p.LastHeartbeat.Format(timeLayout),
			Detail:    p.Name,
		}
	case repositories.IsMessageKey(key):
		m, err := repositories.DecodeMessage(val)
		if err != nil {
			return corrupted(key, err)
		}
		return InspectRow{
			Key:       key,
			Type:      strings.ToUpper(m.Kind),
			Timestamp: m.At.Format(timeLayout),
			Detail:    fmt.Sprintf("%s -> %s: %s", m.From, m.To, m.Text),
		}
	case repositories.IsMessageIndexKey(key):
		return InspectRow{
			Key:       key,
			Type:      "INDEX",
			Timestamp: "--:--:--",
			Detail:    string(val),
		}
	}
	return DefaultMapper(key, val)
}

func corrupted(key string, err error) InspectRow {
	row := DefaultMapper(key, nil)
	row.Type = "CORRUPTED"
	row.Detail = err.Error()
	return row
}
