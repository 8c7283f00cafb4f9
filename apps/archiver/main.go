package main

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/db"
	"github.com/mahaj/room-relay/pkg/logging"
)

type Config struct {
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:19092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"relay-events"`
	GroupID      string   `env:"KAFKA_GROUP_ID" envDefault:"relay-archiver"`
	ScyllaHosts  []string `env:"SCYLLA_HOSTS" envDefault:"localhost:9042"`
	Keyspace     string   `env:"SCYLLA_KEYSPACE" envDefault:"chat"`
}

// Schema applied at startup. In production this belongs to a migration tool;
// bootstrapping here keeps single-host deployments one command.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS room_messages (
		room_id text,
		id bigint,
		sender_id text,
		content text,
		created_at timestamp,
		read boolean,
		PRIMARY KEY (room_id, id)
	) WITH CLUSTERING ORDER BY (id ASC)`,
	`CREATE TABLE IF NOT EXISTS message_rooms (
		id bigint PRIMARY KEY,
		room_id text
	)`,
	`CREATE TABLE IF NOT EXISTS relay_events (
		room_id text,
		at timeuuid,
		event text,
		payload text,
		PRIMARY KEY (room_id, at)
	)`,
}

func main() {
	logger := logging.New()
	defer logger.Sync()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal("parse config", zap.Error(err))
	}

	session, err := bootstrap(cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap scylla", zap.Error(err))
	}
	defer session.Close()

	archiver := NewArchiver(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.GroupID, session, logger)
	defer archiver.Close()

	logger.Info("archiver consuming", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	archiver.Run(context.Background())
}

func bootstrap(cfg Config, logger *zap.Logger) (*gocql.Session, error) {
	sys, err := db.Connect(cfg.ScyllaHosts, "system")
	if err != nil {
		return nil, err
	}
	err = sys.Query(`CREATE KEYSPACE IF NOT EXISTS ` + cfg.Keyspace +
		` WITH REPLICATION = { 'class' : 'SimpleStrategy', 'replication_factor' : 1 }`).Exec()
	sys.Close()
	if err != nil {
		return nil, err
	}

	session, err := db.Connect(cfg.ScyllaHosts, cfg.Keyspace)
	if err != nil {
		return nil, err
	}
	for _, ddl := range tables {
		if err := session.Query(ddl).Exec(); err != nil {
			session.Close()
			return nil, err
		}
	}
	logger.Info("schema ready", zap.String("keyspace", cfg.Keyspace))
	return session, nil
}
