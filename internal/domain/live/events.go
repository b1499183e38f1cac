package live

import "fmt"

const (
	EventProgressUpdated = "progress_updated"
	EventSubscribed      = "subscribed"
	EventUnsubscribed    = "unsubscribed"
	EventPong            = "pong"
	EventError           = "error"
)

// Event is pushed to subscribed clients.
type Event struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ClientMessage is what clients send: subscribe, unsubscribe or ping.
type ClientMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

func DeliveryNoteTopic(id int64) string { return fmt.Sprintf("delivery_note:%d", id) }
func OrderTopic(id int64) string        { return fmt.Sprintf("order:%d", id) }
func ProjectTopic(id int64) string      { return fmt.Sprintf("project:%d", id) }

func errorEvent(code string) *Event {
	return &Event{Type: EventError, Payload: map[string]string{"code": code}}
}
