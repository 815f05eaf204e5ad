package globalstate

import (
	"fmt"
	"sync"
)

// State is one step of the server socket lifecycle.
type State int

const (
	Unbound State = iota
	Bound
	Listening
	Connected
	Draining
	Closed
)

var stateNames = [...]string{
	Unbound:   "unbound",
	Bound:     "bound",
	Listening: "listening",
	Connected: "connected",
	Draining:  "draining",
	Closed:    "closed",
}

func (s State) String() string {
	if s < Unbound || s > Closed {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Lifecycle 记录 server 当前所处的状态。
// 状态只能按 unbound → bound → listening → connected → draining → closed 前进，
// 唯一的例外是任意状态都可以直接跳到 closed（出错或取消时）。
type Lifecycle struct {
	mu    sync.RWMutex
	state State
}

// NewLifecycle returns a Lifecycle in the Unbound state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: Unbound}
}

// Advance moves to next, rejecting skips and backwards moves.
func (l *Lifecycle) Advance(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Closed {
		return fmt.Errorf("lifecycle already closed, cannot move to %s", next)
	}
	if next != Closed && next != l.state+1 {
		return fmt.Errorf("invalid lifecycle transition %s -> %s", l.state, next)
	}
	l.state = next
	return nil
}

// Get 方法用于安全地读取状态。
func (l *Lifecycle) Get() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}
