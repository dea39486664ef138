// Package executor dispatches parsed RESP commands against the storage
// engine, auth service, and runtime config, and reports every dispatch
// to stats and metrics.
package executor

import (
	"strconv"
	"strings"
	"time"

	"github.com/akashmaji946/cachesrv/internal/auth"
	"github.com/akashmaji946/cachesrv/internal/resp"
	"github.com/akashmaji946/cachesrv/internal/runtimeconfig"
	"github.com/akashmaji946/cachesrv/internal/store"
)

// Counters receives one increment per dispatched command, keyed by the
// canonical upper-case command name executor uses internally (GET, SET,
// OTHER, ...). Both stats.Stats and metrics.Registry implement this.
type Counters interface {
	IncCommand(name string)
}

// Executor wires the storage engine, auth, and runtime config together
// and turns a parsed command array into a RESP reply.
type Executor struct {
	storage  *store.Storage
	auth     *auth.Service
	config   *runtimeconfig.Config
	counters []Counters

	statsFormatter       StatsFormatter
	hostMemoryTotalBytes uint64
	maxMemorySetters     []MaxMemorySetter
}

// MaxMemorySetter receives the new memory budget whenever CONFIG SET
// changes it, so stats' percent-of-max reporting stays in sync without
// executor reaching into stats internals directly.
type MaxMemorySetter interface {
	SetMaxMemory(bytes int64)
}

// New creates an Executor. counters may be empty.
func New(storage *store.Storage, authSvc *auth.Service, cfg *runtimeconfig.Config, counters ...Counters) *Executor {
	return &Executor{storage: storage, auth: authSvc, config: cfg, counters: counters}
}

// SetMaxMemorySetters registers sinks to notify whenever CONFIG SET
// changes the memory budget.
func (e *Executor) SetMaxMemorySetters(setters ...MaxMemorySetter) {
	e.maxMemorySetters = setters
}

func (e *Executor) incCommand(name string) {
	for _, c := range e.counters {
		c.IncCommand(name)
	}
}

// preAuthAllowed lists commands that may run before AUTH succeeds.
var preAuthAllowed = map[string]bool{
	"HELLO":  true,
	"AUTH":   true,
	"CONFIG": true,
	"PING":   true,
	"QUIT":   true,
}

// Execute dispatches cmd (a RESP array whose first element is the
// command name) against the store, updating authenticated in place when
// an AUTH succeeds. It never returns a Go error — protocol-level
// failures are expressed as resp.Error values.
func (e *Executor) Execute(cmd resp.Value, authenticated *bool) resp.Value {
	if cmd.Type != resp.Array || len(cmd.Arr) == 0 {
		return resp.NewError("ERR", "invalid command format")
	}

	nameVal := cmd.Arr[0]
	if nameVal.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid command name")
	}
	name := strings.ToUpper(string(nameVal.Bulk))

	if !preAuthAllowed[name] && !*authenticated {
		return resp.NewError("NOAUTH", "Authentication required")
	}

	switch name {
	case "HELLO":
		return e.handleHello(cmd)
	case "AUTH":
		return e.handleAuth(cmd, authenticated)
	case "CONFIG":
		return e.handleConfig(cmd)
	case "PING":
		e.incCommand("PING")
		return resp.NewSimpleString("PONG")
	case "QUIT":
		e.incCommand("QUIT")
		return resp.NewSimpleString("OK")
	case "GET":
		return e.handleGet(cmd)
	case "SET":
		return e.handleSet(cmd)
	case "DEL":
		return e.handleDel(cmd)
	case "EXPIRE":
		return e.handleExpire(cmd)
	case "TTL":
		return e.handleTTL(cmd)
	case "STATS":
		return e.handleStats(cmd)
	}

	e.incCommand("OTHER")
	return resp.NewError("ERR", "unknown command")
}

func wrongArgs(cmdName string) resp.Value {
	return resp.NewErrorf("ERR", "wrong number of arguments for '%s' command", cmdName)
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

func (e *Executor) handleHello(cmd resp.Value) resp.Value {
	e.incCommand("HELLO")

	if len(cmd.Arr) < 2 {
		return wrongArgs("HELLO")
	}
	version := cmd.Arr[1]
	if version.Type != resp.BulkString || string(version.Bulk) != "2" {
		return resp.NewError("NOPROTO", "unsupported protocol version")
	}
	return resp.NewSimpleString("OK")
}

func (e *Executor) handleAuth(cmd resp.Value, authenticated *bool) resp.Value {
	e.incCommand("AUTH")

	if len(cmd.Arr) < 2 || len(cmd.Arr) > 3 {
		return wrongArgs("AUTH")
	}

	var username, password string
	if len(cmd.Arr) == 2 {
		username = e.auth.DefaultUser()
		password = string(cmd.Arr[1].Bulk)
	} else {
		username = string(cmd.Arr[1].Bulk)
		password = string(cmd.Arr[2].Bulk)
	}

	if e.auth.Authenticate(username, password) {
		*authenticated = true
		return resp.NewSimpleString("OK")
	}
	return resp.NewError("WRONGPASS", "invalid username-password pair")
}

func (e *Executor) handleGet(cmd resp.Value) resp.Value {
	e.incCommand("GET")

	if len(cmd.Arr) < 2 {
		return wrongArgs("GET")
	}
	key := cmd.Arr[1]
	if key.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid key type")
	}

	value, ok := e.storage.Get(string(key.Bulk))
	if !ok {
		return resp.NewNull()
	}
	return resp.NewBulkString(value)
}

func (e *Executor) handleSet(cmd resp.Value) resp.Value {
	e.incCommand("SET")

	if len(cmd.Arr) != 3 {
		return wrongArgs("SET")
	}
	key, value := cmd.Arr[1], cmd.Arr[2]
	if key.Type != resp.BulkString || value.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid argument type")
	}

	if err := e.storage.Set(string(key.Bulk), value.Bulk, 0); err != nil {
		return resp.NewError("ERR", "out of memory")
	}
	return resp.NewSimpleString("OK")
}

func (e *Executor) handleDel(cmd resp.Value) resp.Value {
	e.incCommand("DEL")

	if len(cmd.Arr) < 2 {
		return wrongArgs("DEL")
	}

	keys := make([]string, 0, len(cmd.Arr)-1)
	for _, k := range cmd.Arr[1:] {
		if k.Type == resp.BulkString {
			keys = append(keys, string(k.Bulk))
		}
	}
	return resp.NewInteger(int64(e.storage.Del(keys...)))
}

func (e *Executor) handleExpire(cmd resp.Value) resp.Value {
	e.incCommand("EXPIRE")

	if len(cmd.Arr) < 3 {
		return wrongArgs("EXPIRE")
	}
	key, seconds := cmd.Arr[1], cmd.Arr[2]
	if key.Type != resp.BulkString || seconds.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid argument type")
	}

	n, _ := strconv.ParseInt(string(seconds.Bulk), 10, 64)
	result := e.storage.Expire(string(key.Bulk), time.Duration(n)*time.Second)
	return resp.NewInteger(int64(result))
}

func (e *Executor) handleTTL(cmd resp.Value) resp.Value {
	e.incCommand("TTL")

	if len(cmd.Arr) < 2 {
		return wrongArgs("TTL")
	}
	key := cmd.Arr[1]
	if key.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid key type")
	}
	return resp.NewInteger(e.storage.TTL(string(key.Bulk)))
}

// StatsFormatter is implemented by stats.Stats; kept as a narrow
// interface here to avoid executor depending on internal/stats directly.
type StatsFormatter interface {
	Format(hostMemoryTotalBytes uint64) string
}

// statsFormatter is set via SetStatsFormatter once the stats block exists;
// STATS predates its own formatter at Executor-construction time because
// stats.Stats itself depends on nothing executor provides, so the wiring
// is one-directional and optional.
func (e *Executor) handleStats(cmd resp.Value) resp.Value {
	e.incCommand("STATS")

	if e.statsFormatter == nil {
		return resp.NewError("ERR", "failed to format statistics")
	}
	return resp.NewBulkStringFromString(e.statsFormatter.Format(e.hostMemoryTotalBytes))
}

// SetStatsFormatter wires the STATS command's text source.
// hostMemoryTotalBytes is a one-time snapshot of total host memory (bytes), reported
// informationally in the Memory section.
func (e *Executor) SetStatsFormatter(f StatsFormatter, hostMemoryTotalBytes uint64) {
	e.statsFormatter = f
	e.hostMemoryTotalBytes = hostMemoryTotalBytes
}
