package pending

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opState int32

const (
	notStarted opState = iota
	inProgress
	succeeded
	failed
)

type operation struct {
	name  string
	state atomic.Int32
}

func (o *operation) Terminal() bool {
	switch opState(o.state.Load()) {
	case notStarted, inProgress:
		return false
	}
	return true
}

func (o *operation) set(state opState) {
	o.state.Store(int32(state))
}

func newOperation(name string, state opState) *operation {
	ret := &operation{name: name}
	ret.set(state)
	return ret
}

type recorder struct {
	mux   sync.Mutex
	calls map[string][]*operation
}

func (r *recorder) listener(name string) Listener[*operation] {
	return func(op *operation) {
		r.mux.Lock()
		defer r.mux.Unlock()
		r.calls[name] = append(r.calls[name], op)
	}
}

func (r *recorder) count(name string) int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.calls[name])
}

func newRecorder() *recorder {
	return &recorder{calls: map[string][]*operation{}}
}

func TestRegistry_NonTerminalNeverDelivered(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	a := newOperation("a", inProgress)
	b := newOperation("b", notStarted)
	registry.Register(a, calls.listener("L1"))
	registry.Register(b, calls.listener("L2"))

	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, registry.Poll())
	}
	assert.Equal(t, 0, calls.count("L1"))
	assert.Equal(t, 0, calls.count("L2"))
	assert.Equal(t, 2, registry.Len())
	assert.True(t, registry.Contains(a))
	assert.True(t, registry.Contains(b))
}

func TestRegistry_DeliversOnceAfterSuccess(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	a := newOperation("a", inProgress)
	registry.Register(a, calls.listener("L1"))

	assert.Equal(t, 0, registry.Poll())
	assert.True(t, registry.Contains(a))

	a.set(succeeded)
	assert.Equal(t, 1, registry.Poll())
	require.Equal(t, 1, calls.count("L1"))
	assert.Same(t, a, calls.calls["L1"][0])
	assert.False(t, registry.Contains(a))

	assert.Equal(t, 0, registry.Poll())
	assert.Equal(t, 1, calls.count("L1"))
}

func TestRegistry_OnlyTerminalHandleFires(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	a := newOperation("a", inProgress)
	b := newOperation("b", inProgress)
	registry.Register(a, calls.listener("A"))
	registry.Register(b, calls.listener("B"))

	b.set(failed)
	assert.Equal(t, 1, registry.Poll())
	assert.Equal(t, 0, calls.count("A"))
	assert.Equal(t, 1, calls.count("B"))
	assert.True(t, registry.Contains(a))
	assert.False(t, registry.Contains(b))
}

func TestRegistry_DiscardAll(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	a := newOperation("a", inProgress)
	b := newOperation("b", inProgress)
	registry.Register(a, calls.listener("A"))
	registry.Register(b, calls.listener("B"))

	assert.Equal(t, 2, registry.DiscardAll())
	assert.Equal(t, 0, registry.Len())

	a.set(succeeded)
	b.set(failed)
	assert.Equal(t, 0, registry.Poll())
	assert.Equal(t, 0, calls.count("A"))
	assert.Equal(t, 0, calls.count("B"))
}

func TestRegistry_ReRegisterReplacesListener(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	a := newOperation("a", inProgress)
	registry.Register(a, calls.listener("old"))
	registry.Register(a, calls.listener("new"))
	assert.Equal(t, 1, registry.Len())

	a.set(succeeded)
	registry.Poll()
	assert.Equal(t, 0, calls.count("old"))
	assert.Equal(t, 1, calls.count("new"))
}

func TestRegistry_ReRegisterAfterDelivery(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	a := newOperation("a", succeeded)
	registry.Register(a, calls.listener("first"))
	registry.Poll()

	registry.Register(a, calls.listener("second"))
	registry.Poll()
	assert.Equal(t, 1, calls.count("first"))
	assert.Equal(t, 1, calls.count("second"))
}

func TestRegistry_ListenerMayRegister(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	host := newOperation("host", succeeded)
	resolve := newOperation("resolve", inProgress)
	registry.Register(host, func(op *operation) {
		registry.Register(resolve, calls.listener("resolve"))
	})

	assert.Equal(t, 1, registry.Poll())
	assert.True(t, registry.Contains(resolve))

	resolve.set(succeeded)
	assert.Equal(t, 1, registry.Poll())
	assert.Equal(t, 1, calls.count("resolve"))
}

func TestRegistry_PanickingListenerKeepsOthers(t *testing.T) {
	registry := New[*operation]()
	calls := newRecorder()
	var ops []*operation
	for _, name := range []string{"a", "b", "c"} {
		op := newOperation(name, succeeded)
		ops = append(ops, op)
		registry.Register(op, calls.listener(name))
	}
	bad := newOperation("bad", succeeded)
	registry.Register(bad, func(*operation) { panic("boom") })

	assert.Panics(t, func() { registry.Poll() })
	registry.Poll()

	for _, op := range ops {
		assert.Equal(t, 1, calls.count(op.name), op.name)
	}
	assert.False(t, registry.Contains(bad))
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_NilListener(t *testing.T) {
	registry := New[*operation]()
	a := newOperation("a", succeeded)
	registry.Register(a, nil)
	assert.Equal(t, 1, registry.Poll())
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_ConcurrentRegisterDuringPoll(t *testing.T) {
	registry := New[*operation]()
	var delivered sync.Map
	var duplicates atomic.Int32

	const workers = 8
	const perWorker = 200
	ops := make([][]*operation, workers)
	for w := range ops {
		ops[w] = make([]*operation, perWorker)
		for i := range ops[w] {
			ops[w][i] = newOperation("op", inProgress)
		}
	}
	listener := func(op *operation) {
		if _, loaded := delivered.LoadOrStore(op, true); loaded {
			duplicates.Add(1)
		}
	}

	stop := make(chan struct{})
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		for {
			select {
			case <-stop:
				return
			default:
				registry.Poll()
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(batch []*operation) {
			defer wg.Done()
			for i, op := range batch {
				registry.Register(op, listener)
				if i%2 == 0 {
					op.set(succeeded)
				}
			}
		}(ops[w])
	}
	wg.Wait()
	close(stop)
	<-pollerDone

	for _, batch := range ops {
		for _, op := range batch {
			op.set(succeeded)
		}
	}
	registry.Poll()

	assert.Equal(t, int32(0), duplicates.Load())
	assert.Equal(t, 0, registry.Len())
	count := 0
	delivered.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, workers*perWorker, count)
}
