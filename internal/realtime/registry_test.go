package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryMultipleConnsPerUser(t *testing.T) {
	r := NewRegistry()

	a1 := newConn(1, nil)
	a2 := newConn(1, nil)
	b := newConn(2, nil)

	r.Register(a1)
	r.Register(a2)
	r.Register(b)

	assert.Len(t, r.Resolve(1), 2)
	assert.Len(t, r.Resolve(2), 1)
	assert.Len(t, r.All(), 3)
}

func TestRegistryResolveOfflineUser(t *testing.T) {
	r := NewRegistry()

	// Offline is a normal state: empty slice, no error path at all.
	conns := r.Resolve(99)
	assert.NotNil(t, conns)
	assert.Empty(t, conns)
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()

	c := newConn(1, nil)
	r.Register(c)
	r.Unregister(c)
	r.Unregister(c)

	assert.Empty(t, r.Resolve(1))
	assert.Empty(t, r.All())
}
