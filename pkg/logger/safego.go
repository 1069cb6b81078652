package logger

import (
	"fmt"
	"runtime/debug"
)

// SafeGo runs fn on a detached goroutine and logs instead of crashing when it
// panics. Callers never wait on it.
func SafeGo(log Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
