package main

// Throttle bounds how many decodes run at once.
type Throttle struct {
	tokens chan struct{}
}

func NewThrottle(n int) *Throttle {
	t := &Throttle{tokens: make(chan struct{}, max(1, n))}
	for range cap(t.tokens) {
		t.tokens <- struct{}{}
	}
	return t
}

// GetToken blocks until a slot is free and returns the function that frees it.
func (t *Throttle) GetToken() func() {
	<-t.tokens
	return func() {
		t.tokens <- struct{}{}
	}
}
