package httpmiddleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// MsgTooManyAttempts is shown when a client runs out of tokens.
const MsgTooManyAttempts = "Juda ko'p urinish. Birozdan so'ng qayta urinib ko'ring."

// pruneAbove is the key count past which refilled buckets are dropped.
const pruneAbove = 4096

// TokenBucket limits attempts per key: capacity tokens, refilled continuously at
// perMinute tokens a minute.
type TokenBucket struct {
	capacity float64
	perMin   float64
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	at     time.Time
}

func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: float64(capacity),
		perMin:   float64(perMinute),
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

// Allow takes one token for key. When none is left it returns how long until one is.
func (l *TokenBucket) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= pruneAbove {
			l.pruneLocked(now)
		}
		b = &bucket{tokens: l.capacity, at: now}
		l.buckets[key] = b
	}
	b.tokens = math.Min(l.capacity, b.tokens+now.Sub(b.at).Minutes()*l.perMin)
	b.at = now
	if b.tokens < 1 {
		if l.perMin <= 0 {
			return false, time.Minute
		}
		return false, time.Duration(math.Round((1 - b.tokens) / l.perMin * float64(time.Minute)))
	}
	b.tokens--
	return true, 0
}

func (l *TokenBucket) pruneLocked(now time.Time) {
	for key, b := range l.buckets {
		if b.tokens+now.Sub(b.at).Minutes()*l.perMin >= l.capacity {
			delete(l.buckets, key)
		}
	}
}

// GinMiddleware limits each route per client IP. onLimit renders the refusal after
// Retry-After is set; nil answers 429 with a JSON message.
func (l *TokenBucket) GinMiddleware(onLimit gin.HandlerFunc) gin.HandlerFunc {
	if onLimit == nil {
		onLimit = func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": MsgTooManyAttempts})
		}
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		ok, wait := l.Allow(c.FullPath() + "|" + ip)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
