package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/cachesrv/internal/auth"
	"github.com/akashmaji946/cachesrv/internal/resp"
	"github.com/akashmaji946/cachesrv/internal/runtimeconfig"
	"github.com/akashmaji946/cachesrv/internal/store"
)

func newTestExecutor() *Executor {
	st := store.New(0, 0, nil)
	authSvc := auth.New("default", "secret")
	cfg := runtimeconfig.New(64, 4, 0)
	return New(st, authSvc, cfg)
}

func cmdOf(parts ...string) resp.Value {
	elems := make([]resp.Value, len(parts))
	for i, p := range parts {
		elems[i] = resp.NewBulkStringFromString(p)
	}
	return resp.NewArray(elems...)
}

func TestPingNeedsNoAuth(t *testing.T) {
	e := newTestExecutor()
	authed := false
	got := e.Execute(cmdOf("PING"), &authed)
	assert.Equal(t, resp.NewSimpleString("PONG"), got)
}

func TestGetRequiresAuth(t *testing.T) {
	e := newTestExecutor()
	authed := false
	got := e.Execute(cmdOf("GET", "k"), &authed)
	assert.Equal(t, resp.NewError("NOAUTH", "Authentication required"), got)
}

func TestAuthThenGetSet(t *testing.T) {
	e := newTestExecutor()
	authed := false

	got := e.Execute(cmdOf("AUTH", "secret"), &authed)
	require.True(t, authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)

	got = e.Execute(cmdOf("SET", "k", "v"), &authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)

	got = e.Execute(cmdOf("GET", "k"), &authed)
	assert.Equal(t, resp.NewBulkStringFromString("v"), got)
}

func TestAuthWrongPassword(t *testing.T) {
	e := newTestExecutor()
	authed := false
	got := e.Execute(cmdOf("AUTH", "wrong"), &authed)
	assert.False(t, authed)
	assert.Equal(t, resp.NewError("WRONGPASS", "invalid username-password pair"), got)
}

func TestAuthTwoArgFormUsesConfiguredUser(t *testing.T) {
	st := store.New(0, 0, nil)
	authSvc := auth.New("alice", "secret")
	cfg := runtimeconfig.New(64, 4, 0)
	e := New(st, authSvc, cfg)

	authed := false
	got := e.Execute(cmdOf("AUTH", "secret"), &authed)
	assert.True(t, authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)
}

func TestHelloRequiresVersion2(t *testing.T) {
	e := newTestExecutor()
	authed := false

	got := e.Execute(cmdOf("HELLO", "3"), &authed)
	assert.Equal(t, resp.NewError("NOPROTO", "unsupported protocol version"), got)

	got = e.Execute(cmdOf("HELLO", "2"), &authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)
}

func TestUnknownCommandAfterAuth(t *testing.T) {
	e := newTestExecutor()
	authed := true
	got := e.Execute(cmdOf("FROBNICATE"), &authed)
	assert.Equal(t, resp.NewError("ERR", "unknown command"), got)
}

func TestWrongNumberOfArguments(t *testing.T) {
	e := newTestExecutor()
	authed := true
	got := e.Execute(cmdOf("SET", "onlykey"), &authed)
	assert.Equal(t, resp.NewError("ERR", "wrong number of arguments for 'SET' command"), got)
}

func TestGetMissingKeyReturnsNull(t *testing.T) {
	e := newTestExecutor()
	authed := true
	got := e.Execute(cmdOf("GET", "missing"), &authed)
	assert.True(t, got.IsNull())
}

func TestDelCountsRemoved(t *testing.T) {
	e := newTestExecutor()
	authed := true
	e.Execute(cmdOf("SET", "a", "1"), &authed)
	e.Execute(cmdOf("SET", "b", "2"), &authed)

	got := e.Execute(cmdOf("DEL", "a", "b", "missing"), &authed)
	assert.Equal(t, resp.NewInteger(2), got)
}

func TestExpireAndTTL(t *testing.T) {
	e := newTestExecutor()
	authed := true
	e.Execute(cmdOf("SET", "k", "v"), &authed)

	got := e.Execute(cmdOf("EXPIRE", "k", "100"), &authed)
	assert.Equal(t, resp.NewInteger(1), got)

	got = e.Execute(cmdOf("TTL", "k"), &authed)
	require.Equal(t, resp.Integer, got.Type)
	assert.True(t, got.Int > 0 && got.Int <= 100)

	got = e.Execute(cmdOf("TTL", "missing"), &authed)
	assert.Equal(t, resp.NewInteger(-1), got)
}

func TestConfigGetStar(t *testing.T) {
	e := newTestExecutor()
	authed := true
	got := e.Execute(cmdOf("CONFIG", "GET", "*"), &authed)
	require.Equal(t, resp.Array, got.Type)
	assert.Len(t, got.Arr, 10)
}

func TestConfigGetSingleParam(t *testing.T) {
	e := newTestExecutor()
	authed := true
	got := e.Execute(cmdOf("CONFIG", "GET", "workers"), &authed)
	require.Equal(t, resp.Array, got.Type)
	require.Len(t, got.Arr, 2)
	assert.Equal(t, "workers", string(got.Arr[0].Bulk))
	assert.Equal(t, "4", string(got.Arr[1].Bulk))
}

func TestConfigGetUnsupportedParam(t *testing.T) {
	e := newTestExecutor()
	authed := true
	got := e.Execute(cmdOf("CONFIG", "GET", "bogus"), &authed)
	assert.Equal(t, resp.NewError("ERR", "unsupported CONFIG parameter"), got)
}

func TestConfigSetMaxMemoryValidation(t *testing.T) {
	e := newTestExecutor()
	authed := true

	got := e.Execute(cmdOf("CONFIG", "SET", "maxmemory", "100"), &authed)
	assert.Equal(t, resp.NewError("ERR", "maxmemory must be at least 1MB"), got)

	got = e.Execute(cmdOf("CONFIG", "SET", "maxmemory", "2097152"), &authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)

	got = e.Execute(cmdOf("CONFIG", "GET", "maxmemory"), &authed)
	assert.Equal(t, "2097152", string(got.Arr[1].Bulk))
}

func TestConfigSetDefaultTTLValidation(t *testing.T) {
	e := newTestExecutor()
	authed := true

	got := e.Execute(cmdOf("CONFIG", "SET", "default-ttl", "-1"), &authed)
	assert.Equal(t, resp.NewError("ERR", "default-ttl must be non-negative"), got)

	got = e.Execute(cmdOf("CONFIG", "SET", "default-ttl", "30"), &authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)
}

func TestQuitAndInvalidCommandFormat(t *testing.T) {
	e := newTestExecutor()
	authed := true

	got := e.Execute(cmdOf("QUIT"), &authed)
	assert.Equal(t, resp.NewSimpleString("OK"), got)

	got = e.Execute(resp.NewArray(), &authed)
	assert.Equal(t, resp.NewError("ERR", "invalid command format"), got)
}
