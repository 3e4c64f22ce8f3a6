package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPongWaitDerivedFromPingPeriod(t *testing.T) {
	for _, period := range []time.Duration{time.Second, 3 * time.Second, 30 * time.Second} {
		s := NewWsServer(period)
		assert.Equal(t, 4*period, s.pongWait)
		assert.Greater(t, s.pongWait, s.pingPeriod, "pings must land inside the read deadline")
	}
}
