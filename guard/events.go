package guard

// EventType identifies a guard lifecycle notification.
type EventType uint8

const (
	// EventRegistered fires after the store created a resource (0 -> 1).
	EventRegistered EventType = iota
	// EventUnregistered fires after the store destroyed a resource (1 -> 0).
	EventUnregistered
	// EventAcquired fires when an acquire only bumped the count.
	EventAcquired
	// EventReleased fires when a release only lowered the count.
	EventReleased
	// EventUnmatchedRelease fires for a release with no outstanding acquisition.
	EventUnmatchedRelease
	// EventExternalRegistration fires when PolicyConsultStore adopts a
	// resource that was created outside the guard.
	EventExternalRegistration
	// EventExternalRemoval fires when PolicyConsultStore skips a destroy
	// because the resource was already gone from the store.
	EventExternalRemoval
	// EventStoreFault fires when Create or Destroy failed.
	EventStoreFault
)

var eventNames = [...]string{
	EventRegistered:           "registered",
	EventUnregistered:         "unregistered",
	EventAcquired:             "acquired",
	EventReleased:             "released",
	EventUnmatchedRelease:     "unmatched-release",
	EventExternalRegistration: "external-registration",
	EventExternalRemoval:      "external-removal",
	EventStoreFault:           "store-fault",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a guard lifecycle event.
type Event struct {
	Err   error
	Key   string
	Count int
	Type  EventType
}

// Observer receives notifications about guard lifecycle events.
// Observers run synchronously on the goroutine driving the guard.
type Observer interface {
	OnGuardEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnGuardEvent calls f(e).
func (f ObserverFunc) OnGuardEvent(e Event) { f(e) }
