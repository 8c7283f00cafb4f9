package main

import (
	"net/http"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/db"
	"github.com/mahaj/room-relay/pkg/ids"
	"github.com/mahaj/room-relay/pkg/logging"
	"github.com/mahaj/room-relay/pkg/presence"
	"github.com/mahaj/room-relay/pkg/store"
)

type Config struct {
	Listen      string   `env:"LISTEN_ADDR" envDefault:":8081"`
	ScyllaHosts []string `env:"SCYLLA_HOSTS" envDefault:"localhost:9042"`
	Keyspace    string   `env:"SCYLLA_KEYSPACE" envDefault:"chat"`
	RedisAddr   string   `env:"REDIS_ADDR"`
	NodeID      int64    `env:"NODE_ID" envDefault:"2"`
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")

		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	logger := logging.New()
	defer logger.Sync()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal("parse config", zap.Error(err))
	}

	gen, err := ids.NewGenerator(cfg.NodeID)
	if err != nil {
		logger.Fatal("init id generator", zap.Error(err))
	}

	session, err := db.Connect(cfg.ScyllaHosts, cfg.Keyspace)
	if err != nil {
		logger.Fatal("connect scylla", zap.Error(err))
	}
	defer session.Close()

	hist := store.NewScylla(session, gen)
	http.Handle("/history", CORSMiddleware(NewHistoryHandler(hist, logger)))

	if cfg.RedisAddr != "" {
		tracker := presence.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		http.Handle("/rooms/", CORSMiddleware(NewPresenceHandler(tracker, logger)))
	}

	logger.Info("api listening", zap.String("addr", cfg.Listen))
	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
