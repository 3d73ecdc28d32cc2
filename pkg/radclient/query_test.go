package radclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_CompleteIsIdempotent(t *testing.T) {
	calls := 0
	q := &Query{
		cb: func(*Query, []byte, error, any) { calls++ },
	}

	q.complete(nil, nil)
	q.complete(nil, nil)
	q.complete([]byte("late"), ErrTimedOut)

	assert.Equal(t, 1, calls, "complete must invoke the callback exactly once regardless of how many times it's called")
}

func TestQuery_CancelThenCompleteSkipsCallback(t *testing.T) {
	calls := 0
	q := &Query{
		cb: func(*Query, []byte, error, any) { calls++ },
	}

	q.Cancel()
	q.Cancel()
	q.complete(nil, nil)

	assert.Equal(t, 0, calls)
	assert.True(t, q.done)
}

func TestQuery_CompleteThenCancelIsHarmless(t *testing.T) {
	calls := 0
	q := &Query{
		cb: func(*Query, []byte, error, any) { calls++ },
	}

	q.complete(nil, nil)
	q.Cancel()

	assert.Equal(t, 1, calls)
}

func TestQuery_UnlinkReleasesSlot(t *testing.T) {
	s := &socket{}
	idx, ok := s.allocateAny()
	if !ok {
		t.Fatal("allocateAny failed")
	}
	gen := s.bind(idx, &Query{})

	q := &Query{
		sock:       s,
		pool:       newPool("udp4", 1, 1),
		slotIndex:  idx,
		generation: gen,
		bound:      true,
	}
	q.pool.sockets = append(q.pool.sockets, s)

	q.unlink()

	assert.False(t, q.bound)
	assert.Nil(t, s.slots[idx].query)
}
