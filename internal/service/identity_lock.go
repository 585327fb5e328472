package service

import (
	"fmt"
	"sync"

	"lesson-notes-server/internal/domain"
)

// identityLocks hands out one mutex per identity tuple. Entries are removed
// once no goroutine holds or waits on them.
type identityLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[string]*refLock)}
}

func identityKey(id domain.Identity) string {
	unit := "-"
	if id.UnitNumber != nil {
		unit = fmt.Sprintf("%d", *id.UnitNumber)
	}
	lesson := "-"
	if id.LessonTitle != nil {
		lesson = fmt.Sprintf("%q", *id.LessonTitle)
	}
	return fmt.Sprintf("%d|%d|%s|%s", id.StudentID, id.CourseID, unit, lesson)
}

func (l *identityLocks) lock(id domain.Identity) func() {
	key := identityKey(id)

	l.mu.Lock()
	rl, ok := l.locks[key]
	if !ok {
		rl = &refLock{}
		l.locks[key] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.Lock()

	return func() {
		rl.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *identityLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
