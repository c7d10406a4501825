package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/exposerpc/eventbus"
)

func TestRecordInvocation(t *testing.T) {
	RecordInvocation("Greeter", "hi", "success", 5)
	count := testutil.ToFloat64(invocationsTotal.WithLabelValues("Greeter", "hi", "success"))
	assert.Greater(t, count, 0.0)
}

func TestRecordWrite(t *testing.T) {
	RecordWrite("Build", "version", "rejected")
	count := testutil.ToFloat64(writesTotal.WithLabelValues("Build", "version", "rejected"))
	assert.Greater(t, count, 0.0)
}

func TestRecordAuthCheck(t *testing.T) {
	RecordAuthCheck("TOKEN_ONLY", "failure")
	count := testutil.ToFloat64(authChecksTotal.WithLabelValues("TOKEN_ONLY", "failure"))
	assert.Greater(t, count, 0.0)
}

func TestSetTokenCacheSize(t *testing.T) {
	SetTokenCacheSize(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(tokenCacheSize))
}

func TestRecordGRPCRequest(t *testing.T) {
	RecordGRPCRequest("/exposerpc.ExposeRPC/InvokeCallable", "OK", 12)
	count := testutil.ToFloat64(grpcRequestsTotal.WithLabelValues("/exposerpc.ExposeRPC/InvokeCallable", "OK"))
	assert.Greater(t, count, 0.0)
}

func TestSubscribeEventBus(t *testing.T) {
	bus := eventbus.New(time.Second)
	unsubscribe := SubscribeEventBus(bus)
	defer unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), &eventbus.MemberInvoked{
		ContainerName: "Math", MemberName: "square", Status: "success", DurationMS: 3,
	}))
	require.NoError(t, bus.Publish(context.Background(), &eventbus.DatumWritten{
		ContainerName: "Build", DatumName: "flag",
	}))
	require.NoError(t, bus.Publish(context.Background(), &eventbus.WriteRejected{
		ContainerName: "Build", MemberName: "version", Reason: "immutable",
	}))
	require.NoError(t, bus.Publish(context.Background(), &eventbus.AuthFailure{
		ContainerName: "Vault", MemberName: "secret", Family: "TOKEN_ONLY", Reason: "expired",
	}))
	require.NoError(t, bus.Publish(context.Background(), &eventbus.TokenCacheEvicted{
		Reason: "expired",
	}))

	assert.Greater(t, testutil.ToFloat64(invocationsTotal.WithLabelValues("Math", "square", "success")), 0.0)
	assert.Greater(t, testutil.ToFloat64(writesTotal.WithLabelValues("Build", "flag", "success")), 0.0)
	assert.Greater(t, testutil.ToFloat64(writesTotal.WithLabelValues("Build", "version", "rejected")), 0.0)
	assert.Greater(t, testutil.ToFloat64(authChecksTotal.WithLabelValues("TOKEN_ONLY", "failure")), 0.0)
	assert.Greater(t, testutil.ToFloat64(tokenCacheEvictionsTotal.WithLabelValues("expired")), 0.0)
}

func TestSubscribeEventBus_Unsubscribe(t *testing.T) {
	bus := eventbus.New(time.Second)
	unsubscribe := SubscribeEventBus(bus)
	unsubscribe()

	assert.Empty(t, bus.GetSubscribers("MemberInvoked"))
}

func TestInitTracer_InvalidEndpoint(t *testing.T) {
	shutdown, err := InitTracer("exposerpcd", "")
	require.Error(t, err)
	assert.Nil(t, shutdown)
}
