// Package config holds the boot-time settings read from the command
// line and an optional config file: the port to listen on, the initial
// memory/worker/TTL/credential settings, and the optional Prometheus
// metrics address. Everything
// that can change after the process starts lives in
// internal/runtimeconfig instead.
package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// Static is the boundary record produced once at startup. It is never
// mutated after Load returns.
type Static struct {
	Port int

	MaxMemoryMB   uint64
	Workers       int
	DefaultTTLSec int64

	DefaultUser     string
	DefaultPassword string

	MetricsAddr string
}

func defaults() Static {
	return Static{
		Port:            6380,
		MaxMemoryMB:     64,
		Workers:         4,
		DefaultTTLSec:   0,
		DefaultUser:     "default",
		DefaultPassword: "",
		MetricsAddr:     "",
	}
}

// Load parses command-line flags, optionally layering a cache.conf-style
// file underneath them. Flags always win over file directives, which
// always win over the built-in defaults.
func Load(args []string) (Static, error) {
	cfg := defaults()

	fs := flag.NewFlagSet("cachesrv", flag.ContinueOnError)
	confPath := fs.String("conf", "", "path to a cache.conf-style configuration file")
	port := fs.Int("port", cfg.Port, "TCP port to listen on")
	maxMemoryMB := fs.Uint64("maxmemory-mb", cfg.MaxMemoryMB, "memory budget in mebibytes")
	workers := fs.Int("workers", cfg.Workers, "size of the fixed worker pool")
	defaultTTL := fs.Int64("default-ttl", cfg.DefaultTTLSec, "default TTL in seconds applied to SET with no explicit expiry (0 = none)")
	user := fs.String("user", cfg.DefaultUser, "default auth username")
	password := fs.String("password", cfg.DefaultPassword, "default auth password")
	metricsAddr := fs.String("metrics-addr", cfg.MetricsAddr, "address to serve Prometheus /metrics on (empty disables it)")

	if err := fs.Parse(args); err != nil {
		return Static{}, err
	}

	if *confPath != "" {
		if err := applyConfFile(*confPath, &cfg); err != nil {
			log.Printf("warning: %v — continuing with defaults/flags only", err)
		}
	}

	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("maxmemory-mb") {
		cfg.MaxMemoryMB = *maxMemoryMB
	}
	if fs.Changed("workers") {
		cfg.Workers = *workers
	}
	if fs.Changed("default-ttl") {
		cfg.DefaultTTLSec = *defaultTTL
	}
	if fs.Changed("user") {
		cfg.DefaultUser = *user
	}
	if fs.Changed("password") {
		cfg.DefaultPassword = *password
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = *metricsAddr
	}

	if cfg.Workers < 1 {
		return Static{}, fmt.Errorf("workers must be at least 1")
	}
	if cfg.MaxMemoryMB < 1 {
		return Static{}, fmt.Errorf("maxmemory-mb must be at least 1")
	}

	return cfg, nil
}

// applyConfFile reads a redis.conf-style file (one directive per line,
// "#" comments, blank lines ignored) and layers recognized directives
// onto cfg. Unknown directives and unparsable values are logged and
// skipped rather than treated as fatal; lines with fewer than two fields
// are skipped without a log line.
func applyConfFile(path string, cfg *Static) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		parseConfLine(s.Text(), cfg)
	}
	return s.Err()
}

func parseConfLine(line string, cfg *Static) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return
	}
	directive, value := fields[0], fields[1]

	switch directive {
	case "port":
		if p, err := strconv.Atoi(value); err == nil {
			cfg.Port = p
		} else {
			log.Printf("invalid port directive %q", value)
		}
	case "maxmemory-mb":
		if mb, err := strconv.ParseUint(value, 10, 64); err == nil {
			cfg.MaxMemoryMB = mb
		} else {
			log.Printf("invalid maxmemory-mb directive %q", value)
		}
	case "workers":
		if w, err := strconv.Atoi(value); err == nil {
			cfg.Workers = w
		} else {
			log.Printf("invalid workers directive %q", value)
		}
	case "default-ttl":
		if ttl, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.DefaultTTLSec = ttl
		} else {
			log.Printf("invalid default-ttl directive %q", value)
		}
	case "requireuser":
		cfg.DefaultUser = value
	case "requirepass":
		cfg.DefaultPassword = value
	case "metrics-addr":
		cfg.MetricsAddr = value
	default:
		log.Printf("unknown config directive %q, ignoring", directive)
	}
}
