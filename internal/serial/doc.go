// Package serial holds the connection to a serial-style device independently
// of the screen that displays it.
//
// A Service owns at most one Socket. Connect opens the socket on a background
// goroutine and reports the outcome to the attached Listener; once open, a
// reader goroutine forwards every read as a chunk batch. Disconnect releases
// the socket and is safe to call any number of times.
//
// # Listeners
//
// At most one Listener is attached at a time. Events raised while no listener
// is attached are queued and replayed, in order, on the next Attach.
// Consecutive read events in the queue are merged into a single batch:
//
//	svc := serial.NewService()
//	mb := serial.NewMailbox()
//	_ = svc.Attach(mb)
//	_ = svc.Connect(ctx, sock)
//	for {
//	    <-mb.Ready()
//	    for _, ev := range mb.Drain() {
//	        ev.Dispatch(screen)
//	    }
//	}
//
// Listener callbacks run on Service goroutines. A Mailbox turns them into
// Events that the consumer dispatches on its own goroutine, which is how the
// terminal UI keeps every display mutation on the UI goroutine.
//
// # Lifetime
//
// The Service is not tied to any screen: detaching the listener stops delivery
// but leaves the socket open, so a screen can be rebuilt without dropping the
// connection. Close tears everything down for good.
package serial
