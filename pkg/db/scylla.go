package db

import (
	"time"

	"github.com/gocql/gocql"
)

// Connect opens a gocql session against the given hosts with the timeout and
// retry policy all chat services share. Retries are bounded here, so callers
// never layer their own retry loop on top of a store call.
func Connect(hosts []string, keyspace string) (*gocql.Session, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.ConnectTimeout = 5 * time.Second
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        100 * time.Millisecond,
		Max:        1 * time.Second,
	}

	return cluster.CreateSession()
}
