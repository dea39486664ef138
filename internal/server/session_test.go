package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	net.Conn
}

func TestTableAddFindsFreeSlot(t *testing.T) {
	tb := newTable(2)

	s1 := tb.add(&fakeConn{})
	require.NotNil(t, s1)
	assert.Equal(t, 0, s1.slot)

	s2 := tb.add(&fakeConn{})
	require.NotNil(t, s2)
	assert.Equal(t, 1, s2.slot)

	s3 := tb.add(&fakeConn{})
	assert.Nil(t, s3, "table should be full")

	tb.remove(s1)
	s4 := tb.add(&fakeConn{})
	require.NotNil(t, s4)
	assert.Equal(t, 0, s4.slot, "freed slot should be reused")
}

func TestTableOwnedByStaticModN(t *testing.T) {
	tb := newTable(4)
	for i := 0; i < 4; i++ {
		tb.add(&fakeConn{})
	}

	owned0 := tb.ownedBy(0, 2)
	owned1 := tb.ownedBy(1, 2)

	assert.Len(t, owned0, 2)
	assert.Len(t, owned1, 2)
	for _, s := range owned0 {
		assert.Equal(t, 0, s.slot%2)
	}
	for _, s := range owned1 {
		assert.Equal(t, 1, s.slot%2)
	}
}

func TestTableCountAndAll(t *testing.T) {
	tb := newTable(4)
	tb.add(&fakeConn{})
	s2 := tb.add(&fakeConn{})

	assert.Equal(t, 2, tb.count())
	assert.Len(t, tb.all(), 2)

	tb.remove(s2)
	assert.Equal(t, 1, tb.count())
}
