package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/storyloom/storyloom-server/tokens"
)

const testSecret = "invite-secret"

type invitationStoreMock struct{ mock.Mock }

var _ InvitationStore = (*invitationStoreMock)(nil)

func (m *invitationStoreMock) AddInvitation(ctx context.Context, invitation userdata.Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *invitationStoreMock) GetInvitation(ctx context.Context, id string) (*userdata.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userdata.Invitation), args.Error(1)
}

func (m *invitationStoreMock) TransitionFromPending(ctx context.Context, id, status string) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

type teamStoreMock struct{ mock.Mock }

var _ TeamStore = (*teamStoreMock)(nil)

func (m *teamStoreMock) GetTeam(ctx context.Context, id int64) (*userdata.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userdata.Team), args.Error(1)
}

func (m *teamStoreMock) AddMember(ctx context.Context, member userdata.TeamToUser) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func newService(invitations *invitationStoreMock, teams *teamStoreMock) *InvitationService {
	return NewInvitationService(invitations, teams, testSecret, time.Hour)
}

func pendingInvitation(id string) *userdata.Invitation {
	return &userdata.Invitation{
		Id:        id,
		TeamId:    7,
		Team:      &userdata.Team{Id: 7, Name: "Editorial"},
		Email:     "writer@example.com",
		Role:      userdata.RoleMember,
		Status:    userdata.InvitationPending,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
}

func inviteToken(t *testing.T, id string) string {
	t.Helper()
	token, err := tokens.EncodeInvite(id, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestVerifyReturnsSummary(t *testing.T) {
	invitations := new(invitationStoreMock)
	teams := new(teamStoreMock)
	svc := newService(invitations, teams)

	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(pendingInvitation("inv_1"), nil)

	summary, err := svc.Verify(context.Background(), inviteToken(t, "inv_1"))
	require.NoError(t, err)
	require.Equal(t, "inv_1", summary.InvitationId)
	require.Equal(t, int64(7), summary.TeamId)
	require.Equal(t, "Editorial", summary.TeamName)
	require.Equal(t, "writer@example.com", summary.Email)
	require.Equal(t, userdata.RoleMember, summary.Role)
}

func TestVerifyExpiredTokenIsInvalidNotNotFound(t *testing.T) {
	invitations := new(invitationStoreMock)
	svc := newService(invitations, new(teamStoreMock))

	token, err := tokens.EncodeInvite("inv_1", testSecret, -time.Second)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
	invitations.AssertNotCalled(t, "GetInvitation", mock.Anything, mock.Anything)
}

func TestVerifyMissingInvitation(t *testing.T) {
	invitations := new(invitationStoreMock)
	svc := newService(invitations, new(teamStoreMock))

	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(nil, nil)

	_, err := svc.Verify(context.Background(), inviteToken(t, "inv_1"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyResolvedInvitationIsNotFound(t *testing.T) {
	invitations := new(invitationStoreMock)
	svc := newService(invitations, new(teamStoreMock))

	accepted := pendingInvitation("inv_1")
	accepted.Status = userdata.InvitationAccepted
	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(accepted, nil)

	_, err := svc.Verify(context.Background(), inviteToken(t, "inv_1"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptAuthenticatedAddsMemberAndTransitions(t *testing.T) {
	invitations := new(invitationStoreMock)
	teams := new(teamStoreMock)
	svc := newService(invitations, teams)

	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(pendingInvitation("inv_1"), nil)
	teams.On("AddMember", mock.Anything, mock.MatchedBy(func(member userdata.TeamToUser) bool {
		return member.TeamId == 7 && member.UserId == 42 && member.Role == userdata.RoleMember
	})).Return(nil)
	invitations.On("TransitionFromPending", mock.Anything, "inv_1", userdata.InvitationAccepted).Return(true, nil)

	callerId := int64(42)
	result, err := svc.AcceptByToken(context.Background(), inviteToken(t, "inv_1"), "Writer@Example.com", &callerId)
	require.NoError(t, err)
	require.False(t, result.RequiresSignIn)
	require.Equal(t, int64(7), result.TeamId)
	require.Equal(t, "Editorial", result.TeamName)

	teams.AssertNumberOfCalls(t, "AddMember", 1)
	invitations.AssertNumberOfCalls(t, "TransitionFromPending", 1)
}

func TestAcceptUnauthenticatedRequiresSignIn(t *testing.T) {
	invitations := new(invitationStoreMock)
	teams := new(teamStoreMock)
	svc := newService(invitations, teams)

	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(pendingInvitation("inv_1"), nil)
	invitations.On("TransitionFromPending", mock.Anything, "inv_1", userdata.InvitationAccepted).Return(true, nil)

	result, err := svc.AcceptByToken(context.Background(), inviteToken(t, "inv_1"), "writer@example.com", nil)
	require.NoError(t, err)
	require.True(t, result.RequiresSignIn)

	teams.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
}

func TestAcceptEmailMismatchRegardlessOfState(t *testing.T) {
	for _, status := range []string{userdata.InvitationPending, userdata.InvitationAccepted, userdata.InvitationDeclined} {
		invitations := new(invitationStoreMock)
		teams := new(teamStoreMock)
		svc := newService(invitations, teams)

		invitation := pendingInvitation("inv_1")
		invitation.Status = status
		invitations.On("GetInvitation", mock.Anything, "inv_1").Return(invitation, nil)

		callerId := int64(42)
		_, err := svc.AcceptByToken(context.Background(), inviteToken(t, "inv_1"), "intruder@example.com", &callerId)
		require.ErrorIs(t, err, ErrEmailMismatch)

		teams.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
		invitations.AssertNotCalled(t, "TransitionFromPending", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestAcceptSecondCallIsAlreadyProcessed(t *testing.T) {
	invitations := new(invitationStoreMock)
	teams := new(teamStoreMock)
	svc := newService(invitations, teams)

	invitation := pendingInvitation("inv_1")
	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(invitation, nil)
	teams.On("AddMember", mock.Anything, mock.Anything).Return(nil)
	invitations.On("TransitionFromPending", mock.Anything, "inv_1", userdata.InvitationAccepted).Return(true, nil).Once()
	invitations.On("TransitionFromPending", mock.Anything, "inv_1", userdata.InvitationAccepted).Return(false, nil)

	callerId := int64(42)
	token := inviteToken(t, "inv_1")

	_, err := svc.AcceptByToken(context.Background(), token, "writer@example.com", &callerId)
	require.NoError(t, err)

	_, err = svc.AcceptByToken(context.Background(), token, "writer@example.com", &callerId)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestDeclineThenAcceptIsAlreadyProcessed(t *testing.T) {
	invitations := new(invitationStoreMock)
	teams := new(teamStoreMock)
	svc := newService(invitations, teams)

	invitation := pendingInvitation("inv_1")
	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(invitation, nil)
	invitations.On("TransitionFromPending", mock.Anything, "inv_1", userdata.InvitationDeclined).
		Run(func(args mock.Arguments) { invitation.Status = userdata.InvitationDeclined }).
		Return(true, nil)

	token := inviteToken(t, "inv_1")

	err := svc.DeclineByToken(context.Background(), token, "writer@example.com")
	require.NoError(t, err)

	callerId := int64(42)
	_, err = svc.AcceptByToken(context.Background(), token, "writer@example.com", &callerId)
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	teams.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
}

func TestDeclineDoubleProcessingGuard(t *testing.T) {
	invitations := new(invitationStoreMock)
	svc := newService(invitations, new(teamStoreMock))

	invitations.On("GetInvitation", mock.Anything, "inv_1").Return(pendingInvitation("inv_1"), nil)
	invitations.On("TransitionFromPending", mock.Anything, "inv_1", userdata.InvitationDeclined).Return(false, nil)

	err := svc.DeclineByToken(context.Background(), inviteToken(t, "inv_1"), "writer@example.com")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestInviteCreatesPendingInvitation(t *testing.T) {
	invitations := new(invitationStoreMock)
	svc := newService(invitations, new(teamStoreMock))

	var created userdata.Invitation
	invitations.On("AddInvitation", mock.Anything, mock.MatchedBy(func(invitation userdata.Invitation) bool {
		created = invitation
		return invitation.TeamId == 7 &&
			invitation.Email == "new.writer@example.com" &&
			invitation.Status == userdata.InvitationPending
	})).Return(nil)

	token, err := svc.Invite(context.Background(), 7, " New.Writer@Example.COM ", userdata.RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.DecodeInvite(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, created.Id, claims.InvitationId)
	require.Equal(t, userdata.RoleAdmin, created.Role)
}
