package web

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/sessions"

	"teacherdash/internal/config"
	"teacherdash/internal/session"
	"teacherdash/internal/store"
)

// Session backends selectable through SESSION_BACKEND.
const (
	BackendMemory   = "memory"
	BackendCookie   = "cookie"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// stores hands out the session.Storage of one browser session id.
type stores struct {
	kind  string
	ttl   time.Duration
	redis *store.Redis
	db    *store.DB
}

func openStores(ctx context.Context, cfg config.App) (*stores, error) {
	s := &stores{kind: cfg.SessionBackend, ttl: cfg.SessionMaxAge}
	switch cfg.SessionBackend {
	case BackendMemory, BackendCookie:
	case BackendRedis:
		s.redis = store.NewRedis(cfg.RedisAddr)
	case BackendPostgres:
		db, err := store.NewDB(ctx, store.Postgres, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.db = db
	case BackendSQLite:
		db, err := store.NewDB(ctx, store.SQLite, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.db = db
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	return s, nil
}

// forSession is the storage a new controller starts with. The cookie backend gets a
// placeholder that every request overrides through requestContext.
func (s *stores) forSession(sid string) session.Storage {
	switch {
	case s.redis != nil:
		return s.redis.Values(sid, s.ttl)
	case s.db != nil:
		return s.db.Values(sid)
	default:
		return session.NewMemory()
	}
}

// requestContext carries the request's cookie as session storage when the cookie
// backend is in use.
func (s *stores) requestContext(ctx context.Context, sess sessions.Session) context.Context {
	if s.kind != BackendCookie {
		return ctx
	}
	return session.WithStorage(ctx, session.NewCookie(sess))
}

// healthy reports per backend connectivity for /healthz.
func (s *stores) healthy(ctx context.Context) (map[string]bool, bool) {
	out := map[string]bool{}
	ok := true
	if s.redis != nil {
		out["redis"] = s.redis.Healthy(ctx)
		ok = ok && out["redis"]
	}
	if s.db != nil {
		out["db"] = s.db.Client.PingContext(ctx) == nil
		ok = ok && out["db"]
	}
	return out, ok
}

func (s *stores) Close() error {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
