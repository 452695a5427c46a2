package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDevice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewDevice(0).Workers())
	assert.Equal(t, 1, NewDevice(-3).Workers())

	var device = NewDevice(1)
	var release = device.Acquire()

	var acquired = make(chan struct{})
	go func() {
		var release2 = device.Acquire()
		close(acquired)
		release2()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire must block until the first release")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never got the device")
	}
}
