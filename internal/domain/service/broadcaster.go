package service

// Broadcaster pushes a JSON-serializable message to every live subscriber.
type Broadcaster interface {
	Broadcast(messageType string, payload interface{})
}
