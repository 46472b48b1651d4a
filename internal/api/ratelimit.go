package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/optrisk/pkg/logger"
	"github.com/wonny/optrisk/pkg/redis"
)

// DefaultLimiterIdleTTL is how long an unused per-client limiter is kept
const DefaultLimiterIdleTTL = 5 * time.Minute

// RateLimiter enforces per-client request limits.
// Redis 활성 시 인스턴스 간 공유 (sliding window), 아니면 프로세스 내 token bucket
type RateLimiter struct {
	shared *redis.RateLimiter
	rps    int
	burst  int
	logger *logger.Logger

	// X-Forwarded-For 는 이 대역에서 온 연결일 때만 신뢰
	trusted []netip.Prefix
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	local     map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LimiterOption configures a RateLimiter
type LimiterOption func(*RateLimiter)

// WithTrustedProxies lists the peers whose X-Forwarded-For header is honoured
func WithTrustedProxies(prefixes []netip.Prefix) LimiterOption {
	return func(l *RateLimiter) {
		l.trusted = prefixes
	}
}

// WithIdleTTL sets how long an idle client limiter survives
func WithIdleTTL(d time.Duration) LimiterOption {
	return func(l *RateLimiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

// NewRateLimiter creates a limiter; shared may be nil
func NewRateLimiter(shared *redis.RateLimiter, rps, burst int, log *logger.Logger, opts ...LimiterOption) *RateLimiter {
	l := &RateLimiter{
		shared:  shared,
		rps:     rps,
		burst:   burst,
		logger:  log,
		idleTTL: DefaultLimiterIdleTTL,
		now:     time.Now,
		local:   make(map[string]*clientLimiter),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// ParseTrustedProxies parses CIDRs or bare addresses ("10.0.0.0/8", "127.0.0.1")
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Allow reports whether clientID may make another request now
func (l *RateLimiter) Allow(ctx context.Context, clientID string) bool {
	if l.shared != nil && l.shared.Enabled() {
		allowed, _, err := l.shared.Allow(ctx, redis.ClientRateLimit(clientID, l.rps))
		if err == nil {
			return allowed
		}
		// Redis 장애 시 로컬 제한으로 대체 (요청 차단하지 않음)
		l.logger.WithError(err).Warn("Shared rate limiter failed, using local limiter")
	}

	return l.limiter(clientID).Allow()
}

// ClientKey identifies the caller of r.
// 신뢰하지 않는 피어의 X-Forwarded-For 는 무시 (헤더 위조로 제한 우회 불가)
func (l *RateLimiter) ClientKey(r *http.Request) string {
	host := remoteHost(r)

	peer, err := netip.ParseAddr(host)
	if err != nil || !l.isTrusted(peer) {
		return host
	}

	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return host
	}

	// 오른쪽부터: 마지막 신뢰 프록시가 붙인 홉이 실제 클라이언트
	hops := strings.Split(fwd, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return host
		}
		if !l.isTrusted(addr) {
			return addr.Unmap().String()
		}
	}
	return host
}

func (l *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Clients returns the number of tracked local limiters
func (l *RateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.local)
}

func (l *RateLimiter) limiter(clientID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	cl, ok := l.local[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.local[clientID] = cl
	}
	cl.lastAccess = now
	return cl.limiter
}

// sweep removes limiters idle for longer than idleTTL (mu 보유 상태에서 호출)
func (l *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	removed := 0
	for id, cl := range l.local {
		if cl.lastAccess.Before(cutoff) {
			delete(l.local, id)
			removed++
		}
	}
	l.lastSweep = now

	if removed > 0 {
		l.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"active":  len(l.local),
		}).Debug("Rate limiter cleanup completed")
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
