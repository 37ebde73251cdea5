package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "budgetkeeper.v1.BudgetKeeper"

// BudgetKeeperServer is the server API. Requests and responses are
// google.protobuf.Struct values whose fields are documented on each handler.
type BudgetKeeperServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CategoryReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BudgetReconciliation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBudget(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddLimit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetLimitCap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveLimit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCategories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenameCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PatchTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IncrementTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PurgeTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportCategoryReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(BudgetKeeperServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BudgetKeeperServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BudgetKeeperServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes BudgetKeeper for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BudgetKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", BudgetKeeperServer.Ping),
		unary("CategoryReport", BudgetKeeperServer.CategoryReport),
		unary("BudgetReconciliation", BudgetKeeperServer.BudgetReconciliation),
		unary("GetBudget", BudgetKeeperServer.GetBudget),
		unary("AddLimit", BudgetKeeperServer.AddLimit),
		unary("SetLimitCap", BudgetKeeperServer.SetLimitCap),
		unary("RemoveLimit", BudgetKeeperServer.RemoveLimit),
		unary("CreateCategory", BudgetKeeperServer.CreateCategory),
		unary("ListCategories", BudgetKeeperServer.ListCategories),
		unary("RenameCategory", BudgetKeeperServer.RenameCategory),
		unary("DeleteCategory", BudgetKeeperServer.DeleteCategory),
		unary("ListTransactions", BudgetKeeperServer.ListTransactions),
		unary("GetTransaction", BudgetKeeperServer.GetTransaction),
		unary("CreateTransaction", BudgetKeeperServer.CreateTransaction),
		unary("PatchTransaction", BudgetKeeperServer.PatchTransaction),
		unary("IncrementTransaction", BudgetKeeperServer.IncrementTransaction),
		unary("DeleteTransaction", BudgetKeeperServer.DeleteTransaction),
		unary("PurgeTransactions", BudgetKeeperServer.PurgeTransactions),
		unary("ExportCategoryReport", BudgetKeeperServer.ExportCategoryReport),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "budgetkeeper/v1/budgetkeeper.proto",
}

// RegisterBudgetKeeperServer registers srv on s.
func RegisterBudgetKeeperServer(s grpc.ServiceRegistrar, srv BudgetKeeperServer) {
	s.RegisterService(&ServiceDesc, srv)
}
