package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTLSConfigOffByDefault(t *testing.T) {
	assert.Nil(t, redisTLSConfig("redis.internal:6380", "", ""))
	assert.Nil(t, redisTLSConfig("redis.internal:6380", "false", "1"))
}

func TestRedisTLSConfigVerifiesByDefault(t *testing.T) {
	conf := redisTLSConfig("redis.internal:6380", "true", "")
	require.NotNil(t, conf)
	assert.False(t, conf.InsecureSkipVerify)
	assert.Equal(t, "redis.internal", conf.ServerName)
}

func TestRedisTLSConfigSkipVerifyIsExplicit(t *testing.T) {
	conf := redisTLSConfig("redis.internal:6380", "1", "true")
	require.NotNil(t, conf)
	assert.True(t, conf.InsecureSkipVerify)
}

func TestRedisTLSConfigBareHostAddr(t *testing.T) {
	// An addr without a port still yields a usable server name.
	conf := redisTLSConfig("redis.internal", "true", "")
	require.NotNil(t, conf)
	assert.Equal(t, "redis.internal", conf.ServerName)
}
