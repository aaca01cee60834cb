package config

// This file defines the Redis client constructor for the application.  Redis
// backs the token revocation list and one-time-code records: both rely on
// key expiry so stale entries disappear without an explicit cleanup job.
// Unlike optional caching layers, these stores are security critical, so a
// failed connection at startup is an error rather than a silent nil client.

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (takes precedence if both are set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
//	REDIS_TLS_SKIP_VERIFY – skip server certificate verification (dev only)
//
// The connection is verified with a short ping before the client is returned.
func NewRedisClient() (*redis.Client, error) {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	pwd := os.Getenv("REDIS_PASSWORD")
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	tlsConf := redisTLSConfig(addr, os.Getenv("REDIS_TLS"), os.Getenv("REDIS_TLS_SKIP_VERIFY"))
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  pwd,
		DB:        dbNum,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// redisTLSConfig derives the TLS settings from the REDIS_TLS and
// REDIS_TLS_SKIP_VERIFY values. This Redis holds revocation and
// one-time-code state, so when TLS is on the server certificate is
// verified by default; skipping verification must be asked for explicitly
// and is meant for local setups only.
func redisTLSConfig(addr, tlsEnv, skipEnv string) *tls.Config {
	if !strings.EqualFold(tlsEnv, "true") && tlsEnv != "1" {
		return nil
	}
	serverName := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		serverName = h
	}
	conf := &tls.Config{ServerName: serverName}
	if strings.EqualFold(skipEnv, "true") || skipEnv == "1" {
		conf.InsecureSkipVerify = true
	}
	return conf
}
