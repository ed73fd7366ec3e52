package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNamespacing(t *testing.T) {
	c := &Client{prefix: "betledger"}
	assert.Equal(t, "betledger:lock:wager:w1", c.key("lock", "wager:w1"))
	assert.Equal(t, "betledger:wagers", c.key("wagers"))

	bare := &Client{}
	assert.Equal(t, "ratelimit:ip", bare.key("ratelimit", "ip"))
}

func TestSlidingWindowScriptEmbedded(t *testing.T) {
	assert.Contains(t, slidingWindowLua, "ZREMRANGEBYSCORE")
}
