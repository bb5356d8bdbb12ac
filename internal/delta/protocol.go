package delta

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/draftpulse/rosterlive/internal/model"
)

// Control event names.
const (
	eventSubscribe   = "subscribe"
	eventUnsubscribe = "unsubscribe"
)

var errNoEntityID = errors.New("delta message carries no entity id")

// controlMessage is the payload of subscribe/unsubscribe events. Single-id
// messages use the scalar field, batches the plural one.
type controlMessage struct {
	Type      string  `json:"type"`
	PlayerID  *int64  `json:"playerId,omitempty"`
	DriverID  *int64  `json:"driverId,omitempty"`
	PlayerIDs []int64 `json:"playerIds,omitempty"`
	DriverIDs []int64 `json:"driverIds,omitempty"`
}

// controlPayload builds the control payload for a set of ids.
func controlPayload(sport model.Sport, ids []int64) controlMessage {
	msg := controlMessage{Type: sport.EntityType()}

	if sport == model.SportF1 {
		if len(ids) == 1 {
			msg.DriverID = &ids[0]
		} else {
			msg.DriverIDs = ids
		}
		return msg
	}

	if len(ids) == 1 {
		msg.PlayerID = &ids[0]
	} else {
		msg.PlayerIDs = ids
	}
	return msg
}

// rawDelta mirrors the sport-specific wire shape of inbound delta events.
type rawDelta struct {
	PlayerID     *int64 `json:"playerId,omitempty"`
	DriverID     *int64 `json:"driverId,omitempty"`
	LiveDelta    *int64 `json:"liveDelta"`
	PreviewPrice *int64 `json:"previewPrice"`
}

// decodeDelta normalizes a raw wire message into a DeltaMessage,
// resolving the canonical id from whichever id field is present.
func decodeDelta(data json.RawMessage) (model.DeltaMessage, error) {
	var raw rawDelta
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.DeltaMessage{}, fmt.Errorf("unmarshal delta: %w", err)
	}

	var id int64
	switch {
	case raw.PlayerID != nil:
		id = *raw.PlayerID
	case raw.DriverID != nil:
		id = *raw.DriverID
	default:
		return model.DeltaMessage{}, errNoEntityID
	}

	return model.DeltaMessage{
		ID:           id,
		LiveDelta:    raw.LiveDelta,
		PreviewPrice: raw.PreviewPrice,
	}, nil
}
