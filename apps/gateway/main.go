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
	"github.com/mahaj/room-relay/pkg/relay"
	"github.com/mahaj/room-relay/pkg/store"
	"github.com/mahaj/room-relay/pkg/stream"
)

type Config struct {
	Listen       string   `env:"LISTEN_ADDR" envDefault:":8080"`
	ScyllaHosts  []string `env:"SCYLLA_HOSTS"`
	Keyspace     string   `env:"SCYLLA_KEYSPACE" envDefault:"chat"`
	RedisAddr    string   `env:"REDIS_ADDR"`
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"relay-events"`
	NodeID       int64    `env:"NODE_ID" envDefault:"1"`
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

	var hist store.HistoryStore
	if len(cfg.ScyllaHosts) > 0 {
		session, err := db.Connect(cfg.ScyllaHosts, cfg.Keyspace)
		if err != nil {
			logger.Fatal("connect scylla", zap.Error(err))
		}
		defer session.Close()
		hist = store.NewScylla(session, gen)
	} else {
		logger.Info("no scylla hosts configured, history is in-memory only")
		hist = store.NewMemory()
	}

	var tracker presence.Tracker
	if cfg.RedisAddr != "" {
		tracker = presence.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	var mirror relay.EventMirror
	if len(cfg.KafkaBrokers) > 0 {
		pub := stream.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		mirror = pub
	}

	rly := relay.New(relay.Options{
		Store:    hist,
		Presence: tracker,
		Mirror:   mirror,
		Logger:   logger,
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(rly, logger, w, r)
	})

	logger.Info("gateway listening", zap.String("addr", cfg.Listen))
	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
