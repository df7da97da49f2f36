package store

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Int32

	for i := 0; i < 10; i++ {
		d.Reset(func() { fired.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncerCancelDropsPendingRun(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired atomic.Int32

	d.Reset(func() { fired.Add(1) })
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestDebouncerResetAfterCancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var fired atomic.Int32

	d.Reset(func() { fired.Add(1) })
	d.Cancel()
	d.Reset(func() { fired.Add(1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}
