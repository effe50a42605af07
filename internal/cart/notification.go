package cart

// Event names a user-facing cart notification.
type Event string

const (
	ItemAdded       Event = "itemAdded"
	QuantityUpdated Event = "quantityUpdated"
	ItemUpdated     Event = "itemUpdated"
	ItemRemoved     Event = "itemRemoved"
	CartCleared     Event = "cartCleared"
)

// Notification is emitted once per mutating ledger operation.
type Notification struct {
	Event    Event  `json:"event"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Notifier receives ledger notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
