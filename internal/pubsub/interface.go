package pubsub

// PubSubClient publishes domain events for external subscribers and decodes
// inbound messages.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
