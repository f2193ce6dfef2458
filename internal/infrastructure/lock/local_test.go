package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesSameKey(t *testing.T) {
	l := NewLocalLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "conv")
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.size())
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "conv")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "conv")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotent
	assert.Equal(t, 0, l.size())

	again, err := l.Lock(context.Background(), "conv")
	require.NoError(t, err)
	again()
}

func TestLocalLockerCancelledWaiterKeepsQueue(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "conv")
	require.NoError(t, err)

	acquired := make(chan func())
	go func() {
		next, err := l.Lock(context.Background(), "conv")
		if err == nil {
			acquired <- next
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "conv")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, l.size())

	unlock()
	select {
	case next := <-acquired:
		next()
	case <-time.After(time.Second):
		t.Fatal("queued waiter never acquired the key")
	}
	assert.Equal(t, 0, l.size())
}

func TestNew(t *testing.T) {
	locker, err := New("local", nil, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LocalLocker{}, locker)

	_, err = New("redis", nil, time.Minute, zerolog.Nop())
	assert.Error(t, err)

	_, err = New("etcd", nil, time.Minute, zerolog.Nop())
	assert.Error(t, err)
}
