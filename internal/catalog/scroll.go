package catalog

import "sync"

// ScrollLock models the page-wide scroll lock held while a modal is open.
// Each Acquire returns a release function that takes effect once, however
// many times it is called.
type ScrollLock struct {
	mu       sync.Mutex
	holders  int
	onChange func(locked bool)
}

// NewScrollLock creates a lock. onChange, if set, is called when the lock
// transitions between free and held.
func NewScrollLock(onChange func(locked bool)) *ScrollLock {
	return &ScrollLock{onChange: onChange}
}

// Acquire takes the lock and returns its release function.
func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.holders++
	first := l.holders == 1
	l.mu.Unlock()

	if first && l.onChange != nil {
		l.onChange(true)
	}

	var once sync.Once
	return func() {
		once.Do(l.release)
	}
}

func (l *ScrollLock) release() {
	l.mu.Lock()
	l.holders--
	last := l.holders == 0
	l.mu.Unlock()

	if last && l.onChange != nil {
		l.onChange(false)
	}
}

// Held reports whether any holder has the lock.
func (l *ScrollLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holders > 0
}
