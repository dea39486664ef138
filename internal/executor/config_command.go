package executor

import (
	"strconv"
	"strings"

	"github.com/akashmaji946/cachesrv/internal/resp"
)

func (e *Executor) handleConfig(cmd resp.Value) resp.Value {
	e.incCommand("CONFIG")

	if len(cmd.Arr) < 2 {
		return wrongArgs("CONFIG")
	}
	sub := cmd.Arr[1]
	if sub.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid subcommand type")
	}

	switch strings.ToUpper(string(sub.Bulk)) {
	case "GET":
		return e.handleConfigGet(cmd)
	case "SET":
		return e.handleConfigSet(cmd)
	}
	return resp.NewError("ERR", "unknown CONFIG subcommand")
}

func (e *Executor) handleConfigGet(cmd resp.Value) resp.Value {
	if len(cmd.Arr) < 3 {
		return wrongArgs("CONFIG GET")
	}
	param := cmd.Arr[2]
	if param.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid parameter type")
	}
	name := string(param.Bulk)

	if name == "*" {
		return resp.NewArray(
			resp.NewBulkStringFromString("maxmemory"),
			resp.NewBulkStringFromString(strconv.FormatUint(e.config.MaxMemoryBytes(), 10)),
			resp.NewBulkStringFromString("maxclients"),
			resp.NewBulkStringFromString("10000"),
			resp.NewBulkStringFromString("timeout"),
			resp.NewBulkStringFromString("0"),
			resp.NewBulkStringFromString("tcp-keepalive"),
			resp.NewBulkStringFromString("300"),
			resp.NewBulkStringFromString("databases"),
			resp.NewBulkStringFromString("16"),
		)
	}

	var value string
	switch strings.ToLower(name) {
	case "maxmemory":
		value = strconv.FormatUint(e.config.MaxMemoryBytes(), 10)
	case "maxmemory-mb":
		value = strconv.FormatUint(e.config.MaxMemoryMB(), 10)
	case "default-ttl":
		value = strconv.FormatInt(e.config.DefaultTTL(), 10)
	case "workers":
		value = strconv.Itoa(e.config.Workers())
	default:
		return resp.NewError("ERR", "unsupported CONFIG parameter")
	}

	return resp.NewArray(resp.NewBulkStringFromString(name), resp.NewBulkStringFromString(value))
}

func (e *Executor) handleConfigSet(cmd resp.Value) resp.Value {
	if len(cmd.Arr) < 4 {
		return wrongArgs("CONFIG SET")
	}
	param, value := cmd.Arr[2], cmd.Arr[3]
	if param.Type != resp.BulkString || value.Type != resp.BulkString {
		return resp.NewError("ERR", "invalid argument type")
	}

	raw := string(value.Bulk)
	switch strings.ToLower(string(param.Bulk)) {
	case "maxmemory":
		n, _ := strconv.ParseUint(raw, 10, 64)
		if n < 1024*1024 {
			return resp.NewError("ERR", "maxmemory must be at least 1MB")
		}
		e.config.SetMaxMemoryBytes(n)
		e.propagateMaxMemory(int64(n))
		e.storage.SetMaxMemory(int64(n))
	case "maxmemory-mb":
		n, _ := strconv.ParseUint(raw, 10, 64)
		if n < 1 {
			return resp.NewError("ERR", "maxmemory-mb must be at least 1")
		}
		e.config.SetMaxMemoryMB(n)
		bytes := int64(e.config.MaxMemoryBytes())
		e.propagateMaxMemory(bytes)
		e.storage.SetMaxMemory(bytes)
	case "default-ttl":
		n, _ := strconv.ParseInt(raw, 10, 64)
		if n < 0 {
			return resp.NewError("ERR", "default-ttl must be non-negative")
		}
		e.config.SetDefaultTTL(n)
		e.storage.SetDefaultTTL(secondsToDuration(n))
	default:
		return resp.NewError("ERR", "unsupported CONFIG parameter")
	}

	return resp.NewSimpleString("OK")
}

func (e *Executor) propagateMaxMemory(bytes int64) {
	for _, s := range e.maxMemorySetters {
		s.SetMaxMemory(bytes)
	}
}
