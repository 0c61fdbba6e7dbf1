// Package event provides typed, synchronous publish/subscribe.
//
// Each emitting component owns a Bus for its own payload type, so
// subscribers register handlers for concrete event types instead of
// decoding loosely typed payloads:
//
//	bus := event.NewBus[store.Event]("store")
//	sub, _ := bus.Subscribe(func(ev event.Event[store.Event]) {
//		redraw(ev.Payload.PreviousBox)
//	})
//	defer sub.Cancel()
//
// # Delivery
//
// Publish runs every active handler on the caller's goroutine, ordered by
// Priority and then by subscription order, and returns when all have run.
// A panicking handler is recovered and reported to the bus's PanicHandler;
// the remaining handlers still run.
//
// Handlers may subscribe or cancel while an event is being delivered; the
// change takes effect from the next Publish.
//
// # Mailboxes
//
// Latest is a single-slot, latest-wins mailbox for feeding high frequency
// input (pointer motion) from another goroutine into the single-threaded
// core without building a backlog.
package event
