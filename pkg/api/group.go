package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "splitledger.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure         = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure            = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure          = "/splitledger.v1.GroupService/ListGroups"
	GroupServiceAddGhostMemberProcedure      = "/splitledger.v1.GroupService/AddGhostMember"
	GroupServiceInviteMemberProcedure        = "/splitledger.v1.GroupService/InviteMember"
	GroupServiceRespondToInvitationProcedure = "/splitledger.v1.GroupService/RespondToInvitation"
	GroupServiceRemoveMemberProcedure        = "/splitledger.v1.GroupService/RemoveMember"
	GroupServiceGetBalancesProcedure         = "/splitledger.v1.GroupService/GetBalances"
	GroupServiceGetGroupReportProcedure      = "/splitledger.v1.GroupService/GetGroupReport"
)

// GroupServiceHandler is implemented by the server side of GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	AddGhostMember(context.Context, *connect.Request[AddGhostMemberRequest]) (*connect.Response[AddGhostMemberResponse], error)
	InviteMember(context.Context, *connect.Request[InviteMemberRequest]) (*connect.Response[InviteMemberResponse], error)
	RespondToInvitation(context.Context, *connect.Request[RespondToInvitationRequest]) (*connect.Response[RespondToInvitationResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetGroupReport(context.Context, *connect.Request[GetGroupReportRequest]) (*connect.Response[GetGroupReportResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc. It returns the path
// to mount the handler on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", serviceMux{
		GroupServiceCreateGroupProcedure:         connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceGetGroupProcedure:            connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:          connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceAddGhostMemberProcedure:      connect.NewUnaryHandler(GroupServiceAddGhostMemberProcedure, svc.AddGhostMember, opts...),
		GroupServiceInviteMemberProcedure:        connect.NewUnaryHandler(GroupServiceInviteMemberProcedure, svc.InviteMember, opts...),
		GroupServiceRespondToInvitationProcedure: connect.NewUnaryHandler(GroupServiceRespondToInvitationProcedure, svc.RespondToInvitation, opts...),
		GroupServiceRemoveMemberProcedure:        connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...),
		GroupServiceGetBalancesProcedure:         connect.NewUnaryHandler(GroupServiceGetBalancesProcedure, svc.GetBalances, opts...),
		GroupServiceGetGroupReportProcedure:      connect.NewUnaryHandler(GroupServiceGetGroupReportProcedure, svc.GetGroupReport, opts...),
	}
}

// GroupServiceClient is a typed client for GroupService.
type GroupServiceClient struct {
	createGroup         *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup            *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups          *connect.Client[ListGroupsRequest, ListGroupsResponse]
	addGhostMember      *connect.Client[AddGhostMemberRequest, AddGhostMemberResponse]
	inviteMember        *connect.Client[InviteMemberRequest, InviteMemberResponse]
	respondToInvitation *connect.Client[RespondToInvitationRequest, RespondToInvitationResponse]
	removeMember        *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	getBalances         *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getGroupReport      *connect.Client[GetGroupReportRequest, GetGroupReportResponse]
}

// NewGroupServiceClient returns a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:         connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:            connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:          connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addGhostMember:      connect.NewClient[AddGhostMemberRequest, AddGhostMemberResponse](httpClient, baseURL+GroupServiceAddGhostMemberProcedure, opts...),
		inviteMember:        connect.NewClient[InviteMemberRequest, InviteMemberResponse](httpClient, baseURL+GroupServiceInviteMemberProcedure, opts...),
		respondToInvitation: connect.NewClient[RespondToInvitationRequest, RespondToInvitationResponse](httpClient, baseURL+GroupServiceRespondToInvitationProcedure, opts...),
		removeMember:        connect.NewClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		getBalances:         connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+GroupServiceGetBalancesProcedure, opts...),
		getGroupReport:      connect.NewClient[GetGroupReportRequest, GetGroupReportResponse](httpClient, baseURL+GroupServiceGetGroupReportProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddGhostMember(ctx context.Context, req *connect.Request[AddGhostMemberRequest]) (*connect.Response[AddGhostMemberResponse], error) {
	return c.addGhostMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) InviteMember(ctx context.Context, req *connect.Request[InviteMemberRequest]) (*connect.Response[InviteMemberResponse], error) {
	return c.inviteMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RespondToInvitation(ctx context.Context, req *connect.Request[RespondToInvitationRequest]) (*connect.Response[RespondToInvitationResponse], error) {
	return c.respondToInvitation.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupReport(ctx context.Context, req *connect.Request[GetGroupReportRequest]) (*connect.Response[GetGroupReportResponse], error) {
	return c.getGroupReport.CallUnary(ctx, req)
}
