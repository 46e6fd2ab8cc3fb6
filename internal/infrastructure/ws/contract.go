package ws

import (
	"encoding/json"
	"fmt"
)

type WSMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ControlMessage is a frame sent by a client to join or leave a room.
type ControlMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type ActivityPayload struct {
	Kind   string `json:"kind"`
	Record any    `json:"record"`
}

func NewError(roomID, code, message string) *WSMessage {
	return &WSMessage{
		Type:   ErrorEvent,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// envelope is the frame exchanged between instances through the distribution medium.
type envelope struct {
	Origin string          `json:"origin"`
	Type   string          `json:"type"`
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func encodeEnvelope(origin string, msg *WSMessage) ([]byte, error) {
	env := envelope{
		Origin: origin,
		Type:   msg.Type,
		RoomID: msg.RoomID,
	}

	if msg.Data != nil {
		data, err := json.Marshal(msg.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event data: %w", err)
		}
		env.Data = data
	}

	return json.Marshal(env)
}

func decodeEnvelope(raw []byte) (string, *WSMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	msg := &WSMessage{
		Type:   env.Type,
		RoomID: env.RoomID,
	}
	if len(env.Data) > 0 {
		msg.Data = env.Data
	}

	return env.Origin, msg, nil
}
