package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "splitledger.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure     = "/splitledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceListActivityProcedure      = "/splitledger.v1.ExpenseService/ListActivity"
	ExpenseServiceCreateSettlementProcedure  = "/splitledger.v1.ExpenseService/CreateSettlement"
	ExpenseServiceConfirmSettlementProcedure = "/splitledger.v1.ExpenseService/ConfirmSettlement"
	ExpenseServiceDeleteSettlementProcedure  = "/splitledger.v1.ExpenseService/DeleteSettlement"
)

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	ListActivity(context.Context, *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error)
	CreateSettlement(context.Context, *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error)
	ConfirmSettlement(context.Context, *connect.Request[ConfirmSettlementRequest]) (*connect.Response[ConfirmSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc. It returns the
// path to mount the handler on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", serviceMux{
		ExpenseServiceCreateExpenseProcedure:     connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceListActivityProcedure:      connect.NewUnaryHandler(ExpenseServiceListActivityProcedure, svc.ListActivity, opts...),
		ExpenseServiceCreateSettlementProcedure:  connect.NewUnaryHandler(ExpenseServiceCreateSettlementProcedure, svc.CreateSettlement, opts...),
		ExpenseServiceConfirmSettlementProcedure: connect.NewUnaryHandler(ExpenseServiceConfirmSettlementProcedure, svc.ConfirmSettlement, opts...),
		ExpenseServiceDeleteSettlementProcedure:  connect.NewUnaryHandler(ExpenseServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...),
	}
}

// ExpenseServiceClient is a typed client for ExpenseService.
type ExpenseServiceClient struct {
	createExpense     *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	listActivity      *connect.Client[ListActivityRequest, ListActivityResponse]
	createSettlement  *connect.Client[CreateSettlementRequest, CreateSettlementResponse]
	confirmSettlement *connect.Client[ConfirmSettlementRequest, ConfirmSettlementResponse]
	deleteSettlement  *connect.Client[DeleteSettlementRequest, DeleteSettlementResponse]
}

// NewExpenseServiceClient returns a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		createExpense:     connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		listActivity:      connect.NewClient[ListActivityRequest, ListActivityResponse](httpClient, baseURL+ExpenseServiceListActivityProcedure, opts...),
		createSettlement:  connect.NewClient[CreateSettlementRequest, CreateSettlementResponse](httpClient, baseURL+ExpenseServiceCreateSettlementProcedure, opts...),
		confirmSettlement: connect.NewClient[ConfirmSettlementRequest, ConfirmSettlementResponse](httpClient, baseURL+ExpenseServiceConfirmSettlementProcedure, opts...),
		deleteSettlement:  connect.NewClient[DeleteSettlementRequest, DeleteSettlementResponse](httpClient, baseURL+ExpenseServiceDeleteSettlementProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListActivity(ctx context.Context, req *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ConfirmSettlement(ctx context.Context, req *connect.Request[ConfirmSettlementRequest]) (*connect.Response[ConfirmSettlementResponse], error) {
	return c.confirmSettlement.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}
