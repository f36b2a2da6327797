//go:build linux

package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-transport/api"
)

func TestEpollPollset_ReportsReadableDescriptor(t *testing.T) {
	ps, err := NewPollset()
	require.NoError(t, err)
	defer ps.Close()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	require.NoError(t, ps.Add(uintptr(p[0])))
	require.NoError(t, ps.Add(uintptr(p[0])), "adding twice is a no-op")

	ready, err := ps.Poll(0)
	require.NoError(t, err)
	assert.Empty(t, ready)

	_, err = unix.Write(p[1], []byte("x"))
	require.NoError(t, err)

	ready, err = ps.Poll(1000)
	require.NoError(t, err)
	assert.Equal(t, []uintptr{uintptr(p[0])}, ready)

	require.NoError(t, ps.Remove(uintptr(p[0])))
	ready, err = ps.Poll(0)
	require.NoError(t, err)
	assert.Empty(t, ready)
}

func TestEpollPollset_Closed(t *testing.T) {
	ps, err := NewPollset()
	require.NoError(t, err)
	require.NoError(t, ps.Close())
	require.NoError(t, ps.Close())

	assert.ErrorIs(t, ps.Add(0), api.ErrPollsetClosed)
	_, err = ps.Poll(0)
	assert.ErrorIs(t, err, api.ErrPollsetClosed)
}
