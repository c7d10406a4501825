package observability

import (
	"context"

	"github.com/jeeves-cluster-organization/exposerpc/eventbus"
)

// SubscribeEventBus wires the RPC Surface's and Authenticator's published
// operational events into Prometheus metrics, so metrics collection has no
// direct dependency on rpcserver/auth internals — it only knows the
// eventbus's published message shapes.
func SubscribeEventBus(bus eventbus.Bus) (unsubscribe func()) {
	unsubs := []func(){
		bus.Subscribe("MemberInvoked", func(_ context.Context, msg eventbus.Message) (any, error) {
			if e, ok := msg.(*eventbus.MemberInvoked); ok {
				RecordInvocation(e.ContainerName, e.MemberName, e.Status, e.DurationMS)
			}
			return nil, nil
		}),
		bus.Subscribe("DatumWritten", func(_ context.Context, msg eventbus.Message) (any, error) {
			if e, ok := msg.(*eventbus.DatumWritten); ok {
				RecordWrite(e.ContainerName, e.DatumName, "success")
			}
			return nil, nil
		}),
		bus.Subscribe("WriteRejected", func(_ context.Context, msg eventbus.Message) (any, error) {
			if e, ok := msg.(*eventbus.WriteRejected); ok {
				RecordWrite(e.ContainerName, e.MemberName, "rejected")
			}
			return nil, nil
		}),
		bus.Subscribe("AuthFailure", func(_ context.Context, msg eventbus.Message) (any, error) {
			if e, ok := msg.(*eventbus.AuthFailure); ok {
				RecordAuthCheck(e.Family, "failure")
			}
			return nil, nil
		}),
		bus.Subscribe("TokenCacheEvicted", func(_ context.Context, msg eventbus.Message) (any, error) {
			if e, ok := msg.(*eventbus.TokenCacheEvicted); ok {
				RecordTokenCacheEviction(e.Reason)
			}
			return nil, nil
		}),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
