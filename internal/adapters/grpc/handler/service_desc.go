package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AuditServiceName は監査サービスの完全修飾名です。
const AuditServiceName = "caat.audit.v1.AuditService"

const (
	RunAuditMethod       = "/" + AuditServiceName + "/RunAudit"
	ExportWorkbookMethod = "/" + AuditServiceName + "/ExportWorkbook"
)

// AuditServer は監査サービスのサーバー実装が満たすインターフェースです。
// メッセージは well-known type をそのまま使います。
type AuditServer interface {
	RunAudit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ExportWorkbook(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// RegisterAuditServer は監査サービスを gRPC サーバーへ登録します。
func RegisterAuditServer(s grpc.ServiceRegistrar, srv AuditServer) {
	s.RegisterService(&AuditServiceDesc, srv)
}

// AuditServiceDesc は監査サービスのサービス定義です。
var AuditServiceDesc = grpc.ServiceDesc{
	ServiceName: AuditServiceName,
	HandlerType: (*AuditServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunAudit", Handler: runAuditHandler},
		{MethodName: "ExportWorkbook", Handler: exportWorkbookHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "caat/audit/v1/audit.proto",
}

func runAuditHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuditServer).RunAudit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RunAuditMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AuditServer).RunAudit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func exportWorkbookHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuditServer).ExportWorkbook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExportWorkbookMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AuditServer).ExportWorkbook(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
