// Package stats tracks command counters, cache hit/miss gauges, and
// connection counts, and renders the human-readable STATS report.
package stats

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stats is a mutex-guarded counter/gauge block. All public methods take
// the lock for a short critical section.
type Stats struct {
	mu sync.Mutex

	startTime time.Time

	totalCommands int64
	cmdPing       int64
	cmdHello      int64
	cmdAuth       int64
	cmdGet        int64
	cmdSet        int64
	cmdDel        int64
	cmdExpire     int64
	cmdTTL        int64
	cmdConfig     int64
	cmdStats      int64
	cmdOther      int64

	cacheHits   int64
	cacheMisses int64

	currentConnections int64
	totalConnections   int64

	usedMemoryBytes int64
	maxMemoryBytes  int64
}

// New creates a Stats block with the given memory budget recorded for
// percent-of-max reporting.
func New(maxMemoryBytes int64) *Stats {
	return &Stats{startTime: time.Now(), maxMemoryBytes: maxMemoryBytes}
}

// IncCommand increments the total and the per-command bucket for name
// (case-insensitive). Unknown commands fall into "other".
func (s *Stats) IncCommand(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalCommands++
	switch strings.ToUpper(name) {
	case "PING":
		s.cmdPing++
	case "HELLO":
		s.cmdHello++
	case "AUTH":
		s.cmdAuth++
	case "GET":
		s.cmdGet++
	case "SET":
		s.cmdSet++
	case "DEL":
		s.cmdDel++
	case "EXPIRE":
		s.cmdExpire++
	case "TTL":
		s.cmdTTL++
	case "CONFIG":
		s.cmdConfig++
	case "STATS":
		s.cmdStats++
	default:
		s.cmdOther++
	}
}

// IncCacheHit implements store.StatsSink.
func (s *Stats) IncCacheHit() {
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

// IncCacheMiss implements store.StatsSink.
func (s *Stats) IncCacheMiss() {
	s.mu.Lock()
	s.cacheMisses++
	s.mu.Unlock()
}

// SetUsedMemory implements store.StatsSink. Storage pushes the value while
// holding its own lock; reads of it here take only the stats lock, so the
// figure is eventually consistent with storage.
func (s *Stats) SetUsedMemory(bytes int64) {
	s.mu.Lock()
	s.usedMemoryBytes = bytes
	s.mu.Unlock()
}

// SetMaxMemory updates the budget used for percent-of-max reporting,
// called from CONFIG SET propagation.
func (s *Stats) SetMaxMemory(bytes int64) {
	s.mu.Lock()
	s.maxMemoryBytes = bytes
	s.mu.Unlock()
}

// IncConnection records a newly accepted connection.
func (s *Stats) IncConnection() {
	s.mu.Lock()
	s.currentConnections++
	s.totalConnections++
	s.mu.Unlock()
}

// DecConnection records a closed connection.
func (s *Stats) DecConnection() {
	s.mu.Lock()
	if s.currentConnections > 0 {
		s.currentConnections--
	}
	s.mu.Unlock()
}

// Uptime returns time elapsed since New was called.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// HitRatio returns the cache hit percentage, 0 if there have been no
// lookups yet.
func (s *Stats) HitRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hitRatio(s.cacheHits, s.cacheMisses)
}

func hitRatio(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Format renders the four-section human-readable STATS reply. The exact
// byte layout is not a compatibility surface (spec §6) — only the section
// labels and values are meaningful.
func (s *Stats) Format(hostMemoryTotalBytes uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := time.Since(s.startTime)
	hours := int64(uptime.Hours())
	minutes := int64(uptime.Minutes()) % 60
	seconds := int64(uptime.Seconds()) % 60

	memMiB := float64(s.usedMemoryBytes) / (1024 * 1024)
	maxMiB := float64(s.maxMemoryBytes) / (1024 * 1024)
	var memPercent float64
	if s.maxMemoryBytes > 0 {
		memPercent = float64(s.usedMemoryBytes) / float64(s.maxMemoryBytes) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "STATS\r\n")
	fmt.Fprintf(&b, "1. Requests\r\n")
	fmt.Fprintf(&b, "  total_commands_processed   %d\r\n", s.totalCommands)
	fmt.Fprintf(&b, "  cmd_ping                   %d\r\n", s.cmdPing)
	fmt.Fprintf(&b, "  cmd_hello                  %d\r\n", s.cmdHello)
	fmt.Fprintf(&b, "  cmd_auth                   %d\r\n", s.cmdAuth)
	fmt.Fprintf(&b, "  cmd_get                    %d\r\n", s.cmdGet)
	fmt.Fprintf(&b, "  cmd_set                    %d\r\n", s.cmdSet)
	fmt.Fprintf(&b, "  cmd_del                    %d\r\n", s.cmdDel)
	fmt.Fprintf(&b, "  cmd_expire                 %d\r\n", s.cmdExpire)
	fmt.Fprintf(&b, "  cmd_ttl                    %d\r\n", s.cmdTTL)
	fmt.Fprintf(&b, "  cmd_config                 %d\r\n", s.cmdConfig)
	fmt.Fprintf(&b, "  cmd_stats                  %d\r\n", s.cmdStats)
	fmt.Fprintf(&b, "  cmd_other                  %d\r\n", s.cmdOther)
	fmt.Fprintf(&b, "\r\n2. Cache\r\n")
	fmt.Fprintf(&b, "  cache_hits                 %d\r\n", s.cacheHits)
	fmt.Fprintf(&b, "  cache_misses               %d\r\n", s.cacheMisses)
	fmt.Fprintf(&b, "  hit_ratio                  %.1f%%\r\n", hitRatio(s.cacheHits, s.cacheMisses))
	fmt.Fprintf(&b, "\r\n3. Memory\r\n")
	fmt.Fprintf(&b, "  used_memory_bytes          %d  (%.1f / %.1f MiB, %.1f%%)\r\n", s.usedMemoryBytes, memMiB, maxMiB, memPercent)
	if hostMemoryTotalBytes > 0 {
		fmt.Fprintf(&b, "  host_memory_total_bytes    %d  (%.1f MiB)\r\n", hostMemoryTotalBytes, float64(hostMemoryTotalBytes)/(1024*1024))
	}
	fmt.Fprintf(&b, "\r\n4. Connections / Uptime\r\n")
	fmt.Fprintf(&b, "  current_connections        %d\r\n", s.currentConnections)
	fmt.Fprintf(&b, "  total_connections_received %d\r\n", s.totalConnections)
	fmt.Fprintf(&b, "  uptime_s                   %d  (%dh%dm%ds)\r\n", int64(uptime.Seconds()), hours, minutes, seconds)

	return b.String()
}
