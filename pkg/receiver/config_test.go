package receiver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/NewLearnStream/dr16/pkg/framework"
)

func TestSimulatedReceiver(t *testing.T) {
	conf := NewConfig()
	conf.Simulate = true
	r, err := conf.Open()
	require.NoError(t, err)
	require.Equal(t, "sim", r.Port)
	require.Len(t, r.Runnables(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).Go(r.Runnables()...)
	require.Eventually(t, func() bool {
		return r.Device.Generation() > 0
	}, time.Second, time.Millisecond)
	require.NotZero(t, r.Device.RC().SwitchLeft)
	cancel()
	require.NoError(t, runner.Wait())
}

func TestNewConfigCopiesSerial(t *testing.T) {
	conf := NewConfig()
	conf.Serial.Port = "/dev/ttyUSB9"
	require.NotEqual(t, "/dev/ttyUSB9", NewConfig().Serial.Port)
}
