package rpcserver

import (
	"context"
	"time"

	"github.com/jeeves-cluster-organization/exposerpc/eventbus"
	"github.com/jeeves-cluster-organization/exposerpc/registry"
)

// publishInvoked fires eventbus.MemberInvoked for every completed
// InvokeCallable, success or failure, so observability can subscribe
// without the RPC Surface importing the metrics package directly.
func (s *Service) publishInvoked(ctx context.Context, m *registry.ExposableMember, err error, d time.Duration) {
	if s.bus == nil {
		return
	}
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}
	s.bus.Publish(ctx, &eventbus.MemberInvoked{
		ContainerName: m.ContainerName,
		MemberName:    m.MemberName,
		Status:        status,
		DurationMS:    int(d.Milliseconds()),
		Error:         errMsg,
	})
}

func (s *Service) publishWritten(ctx context.Context, m *registry.ExposableMember) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, &eventbus.DatumWritten{
		ContainerName: m.ContainerName,
		DatumName:     m.MemberName,
	})
}

func (s *Service) publishWriteRejected(ctx context.Context, m *registry.ExposableMember, err error) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, &eventbus.WriteRejected{
		ContainerName: m.ContainerName,
		MemberName:    m.MemberName,
		Reason:        err.Error(),
	})
}

func (s *Service) publishAuthFailure(ctx context.Context, m *registry.ExposableMember, err error) {
	if s.bus == nil {
		return
	}
	family := "NONE"
	switch m.CredentialFamily {
	case registry.TokenOnly:
		family = "TOKEN_ONLY"
	case registry.KeyOnly:
		family = "KEY_ONLY"
	case registry.Either:
		family = "EITHER"
	}
	s.bus.Publish(ctx, &eventbus.AuthFailure{
		ContainerName: m.ContainerName,
		MemberName:    m.MemberName,
		Family:        family,
		Reason:        err.Error(),
	})
}
