package tagbot

import "sync"

// globalLockKey is the lock key shared by commands locked across all
// chats. No chat has marked ID 0.
const globalLockKey int64 = 0

// CommandLock serialises locked commands per key, normally a marked chat
// ID. A locked command that arrives while another one holds the same key
// is rejected.
type CommandLock struct {
	mu    sync.Mutex
	locks map[int64]string
}

// NewCommandLock creates a new CommandLock.
func NewCommandLock() *CommandLock {
	return &CommandLock{
		locks: make(map[int64]string),
	}
}

// TryAcquire takes the lock for key on behalf of command. It returns false
// when the key is already held.
func (l *CommandLock) TryAcquire(key int64, command string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.locks[key]; busy {
		return false
	}

	l.locks[key] = command
	return true
}

// Holder returns the command currently holding the lock for key.
func (l *CommandLock) Holder(key int64) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cmd, ok := l.locks[key]
	return cmd, ok
}

// Unlock releases the lock for key.
func (l *CommandLock) Unlock(key int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
}
