package signalbus

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepTimesOutWithNoSignal(t *testing.T) {
	in := New()
	defer in.Stop()
	sig := in.Sleep(20 * time.Millisecond)
	assert.Nil(t, sig)
}

func TestSleepReturnsEarlyOnSignal(t *testing.T) {
	in := New()
	defer in.Stop()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = syscall.Kill(os.Getpid(), syscall.SIGHUP)
	}()

	sig := in.Sleep(2 * time.Second)
	assert.Equal(t, syscall.SIGHUP, sig)
}

func TestSleepNonBlockingPoll(t *testing.T) {
	in := New()
	defer in.Stop()
	assert.Nil(t, in.Sleep(0))
}
