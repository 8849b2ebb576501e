package server

import (
	"context"
	"net"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/payroll-forensics/internal/adapters/grpc/handler"
	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestServer_ServeHealthAndAudit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	svc := audit.NewService(audit.MemorySource{}, nil, nil, nil, nil)
	srv := New("bufnet", handler.NewAuditHandler(svc, audit.DefaultParams(), nil, logger), logger)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}

	hc, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: handler.AuditServiceName})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if hc.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status %v", hc.GetStatus())
	}

	// no tables supplied: the audit halts before evaluation.
	err = conn.Invoke(context.Background(), handler.RunAuditMethod, &structpb.Struct{}, new(structpb.Struct))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", err)
	}
	if logs.FilterMessage("grpc call failed").FilterField(zap.String("method", handler.RunAuditMethod)).Len() != 1 {
		t.Fatalf("interceptor did not log the failed call")
	}

	_ = conn.Close()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve returned error: %v", err)
	}
}
