package websocket

import (
	"encoding/json"
	"strings"
	"time"
)

// Message types understood by the report feed.
const (
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeSubscribed  = "subscribed"
	MessageTypeError       = "error"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type SubscribeData struct {
	City string `json:"city"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewMessage(messageType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// HandleMessage applies a client command and returns the encoded reply, or
// nil when there is nothing to send back.
func HandleMessage(client *Client, raw []byte) []byte {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return encode(NewMessage(MessageTypeError, map[string]string{"message": "invalid message format"}))
	}

	switch msg.Type {
	case MessageTypePing:
		return encode(NewMessage(MessageTypePong, nil))

	case MessageTypeSubscribe:
		var data SubscribeData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return encode(NewMessage(MessageTypeError, map[string]string{"message": "invalid subscribe data"}))
			}
		}
		client.setCity(strings.TrimSpace(data.City))
		return encode(NewMessage(MessageTypeSubscribed, SubscribeData{City: client.City()}))

	case MessageTypeUnsubscribe:
		client.setCity("")
		return encode(NewMessage(MessageTypeSubscribed, SubscribeData{}))

	default:
		return encode(NewMessage(MessageTypeError, map[string]string{"message": "unknown message type: " + msg.Type}))
	}
}

func encode(msg WSMessage) []byte {
	data, _ := json.Marshal(msg)
	return data
}
