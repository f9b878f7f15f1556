package keylock_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/keylock"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryLinearizesSameKey(t *testing.T) {
	reg := keylock.NewDefault()
	key, err := storekey.NewKey("c/0/0")
	require.NoError(t, err)

	var counter int64
	var wg sync.WaitGroup
	const n = 64
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			unlock := reg.Lock(key)
			defer unlock()
			// read-modify-write that would race without the lock
			v := atomic.LoadInt64(&counter)
			atomic.StoreInt64(&counter, v+1)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(n), counter)
}

func TestDefaultRegistryDifferentKeysIndependent(t *testing.T) {
	reg := keylock.NewDefault()
	k1, _ := storekey.NewKey("a")
	k2, _ := storekey.NewKey("b")

	unlock1 := reg.Lock(k1)
	unlock2 := reg.Lock(k2)
	unlock1()
	unlock2()
}

func TestDisabledRegistryIsNoOp(t *testing.T) {
	reg := keylock.NewDisabled()
	key, _ := storekey.NewKey("a")
	unlock := reg.Lock(key)
	unlock()
}
