package main

import (
	"sync"

	"github.com/gruntwork-io/go-commons/errors"
)

// Run starts f on its own goroutine. A panic in f is turned into an error
// with a stack trace and handed to onPanic instead of crashing the process.
func Run(wg *sync.WaitGroup, f func(), onPanic func(error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer errors.Recover(onPanic)
		f()
	}()
}
