// Package grpc exposes the budgetkeeper services over gRPC.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
)

type ReportService interface {
	CategoryReport(ctx context.Context, ownerID, kind, start, end string) (*models.CategoryReport, error)
	BudgetReconciliation(ctx context.Context, ownerID, month string) (*models.Reconciliation, error)
}

type BudgetService interface {
	Get(ctx context.Context, ownerID, month string) (*models.Budget, error)
	AddLimit(ctx context.Context, ownerID, month, categoryID, limit string) (*models.Budget, error)
	SetLimitCap(ctx context.Context, ownerID, month, categoryID, limit string) (*models.Budget, error)
	RemoveLimit(ctx context.Context, ownerID, month, categoryID string) (*models.Budget, error)
}

type CategoryService interface {
	Create(ctx context.Context, ownerID, name string) (*models.Category, error)
	List(ctx context.Context, ownerID string) ([]models.Category, error)
	Rename(ctx context.Context, ownerID, id, name string) (*models.Category, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TransactionService interface {
	Create(ctx context.Context, ownerID string, in services.TransactionInput) (*models.Transaction, error)
	Get(ctx context.Context, ownerID, id string) (*models.Transaction, error)
	List(ctx context.Context, ownerID string, in services.TransactionListInput) ([]models.Transaction, error)
	Patch(ctx context.Context, ownerID, id string, in services.TransactionPatchInput) (*models.Transaction, error)
	Increment(ctx context.Context, ownerID, id, delta string) (*models.Transaction, error)
	PurgeOlderThan(ctx context.Context, ownerID, before string) (int64, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type ExportService interface {
	ExportCategoryReport(ctx context.Context, ownerID, kind, start, end string) (string, string, error)
}

// Services groups the business services the handlers delegate to.
type Services struct {
	Reports      ReportService
	Budgets      BudgetService
	Categories   CategoryService
	Transactions TransactionService
	Export       ExportService
}

type GRPCServer struct {
	address   string
	services  Services
	logger    logging.Logger
	jwtSecret []byte
}

var _ BudgetKeeperServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		services:  svc,
		jwtSecret: []byte(secretKey),
	}
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	RegisterBudgetKeeperServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
