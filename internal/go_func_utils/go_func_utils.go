package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn on a new goroutine. The terminal UI swallows anything written to stdout,
// so a panic is written to logger with its stack before it is re-raised.
func SafeGo(logger *log.Logger, fn func()) {
	go func() {
		defer logPanic(logger)
		fn()
	}()
}

// SafeGoWG is SafeGo tracked by wg: Add is called before the goroutine starts and Done when fn returns.
func SafeGoWG(logger *log.Logger, wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	SafeGo(logger, func() {
		defer wg.Done()
		fn()
	})
}

func logPanic(logger *log.Logger) {
	if r := recover(); r != nil {
		logger.Printf("PANIC: %v\n%s", r, debug.Stack())
		panic(r)
	}
}
