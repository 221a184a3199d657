package docstore

import (
	"sync"
	"sync/atomic"
)

// Unsubscribe releases a subscription. It is idempotent, and once it
// returns no further callbacks are made. It must not be called from inside
// the subscription's own callbacks.
type Unsubscribe func()

// Watch drains l on its own goroutine, handing each snapshot to onChange
// or onError. Transport errors never end the watch; the previous data
// simply stays wherever the caller cached it.
func Watch(l Listener, onChange func([]Document), onError func(error)) Unsubscribe {
	var stopped atomic.Bool
	done := make(chan struct{})

	go func() {
		defer close(done)
		for snap := range l.Snapshots() {
			if stopped.Load() {
				continue
			}
			if snap.Err != nil {
				if onError != nil {
					onError(snap.Err)
				}
				continue
			}
			onChange(snap.Docs)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			_ = l.Close()
			<-done
		})
	}
}
