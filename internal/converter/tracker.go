package converter

import (
	"errors"
	"os"
	"sync"
)

// ProcessTracker хранит запущенный процесс конвертации,
// чтобы его можно было убить из другой горутины.
// Методы безопасны для nil-получателя.
type ProcessTracker struct {
	mu   sync.Mutex
	proc *os.Process
}

// NewProcessTracker создаёт пустой трекер.
func NewProcessTracker() *ProcessTracker {
	return &ProcessTracker{}
}

// Set регистрирует процесс после Start.
func (t *ProcessTracker) Set(p *os.Process) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.proc = p
	t.mu.Unlock()
}

// Clear снимает регистрацию, если зарегистрирован именно p.
func (t *ProcessTracker) Clear(p *os.Process) {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.proc == p {
		t.proc = nil
	}
	t.mu.Unlock()
}

// Active сообщает, есть ли зарегистрированный процесс.
func (t *ProcessTracker) Active() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.proc != nil
}

// Kill убивает зарегистрированный процесс. Без процесса ничего не делает.
func (t *ProcessTracker) Kill() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.proc == nil {
		return nil
	}
	err := t.proc.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
