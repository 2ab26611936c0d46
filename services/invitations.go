package services

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/storyloom/storyloom-server/tokens"
	"github.com/storyloom/storyloom-server/utils"
)

// Failure modes of the invitation token lifecycle. All four are
// user-facing and recoverable; only storage errors propagate as-is.
var (
	ErrInvalidToken     = errors.New("invalid or expired invitation token")
	ErrNotFound         = errors.New("invitation not found")
	ErrEmailMismatch    = errors.New("invitation was issued to a different email")
	ErrAlreadyProcessed = errors.New("invitation already processed")
)

type InvitationStore interface {
	AddInvitation(ctx context.Context, invitation userdata.Invitation) error
	GetInvitation(ctx context.Context, id string) (*userdata.Invitation, error)
	TransitionFromPending(ctx context.Context, id, status string) (bool, error)
}

type TeamStore interface {
	GetTeam(ctx context.Context, id int64) (*userdata.Team, error)
	AddMember(ctx context.Context, member userdata.TeamToUser) error
}

type InvitationSummary struct {
	InvitationId string    `json:"invitation_id"`
	TeamId       int64     `json:"team_id"`
	TeamName     string    `json:"team_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type AcceptResult struct {
	TeamId         int64
	TeamName       string
	RequiresSignIn bool
}

type InvitationService struct {
	invitations InvitationStore
	teams       TeamStore
	secret      string
	ttl         time.Duration
}

func NewInvitationService(invitations InvitationStore, teams TeamStore, secret string, ttl time.Duration) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		teams:       teams,
		secret:      secret,
		ttl:         ttl,
	}
}

// Invite creates a pending invitation for an email address and returns the
// signed token to embed in the join link.
func (s *InvitationService) Invite(ctx context.Context, teamId int64, email, role string) (string, error) {
	if role != userdata.RoleAdmin {
		role = userdata.RoleMember
	}

	invitation := userdata.Invitation{
		Id:        hex.EncodeToString(utils.GenerateRandomBytes(16)),
		TeamId:    teamId,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      role,
		Status:    userdata.InvitationPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.invitations.AddInvitation(ctx, invitation); err != nil {
		return "", err
	}

	return tokens.EncodeInvite(invitation.Id, s.secret, s.ttl)
}

// Verify decodes the token and projects the referenced pending invitation.
// Read-only and safe for unauthenticated, repeated calls. Resolved and
// missing invitations are both reported as not found so callers cannot
// probe which ids exist.
func (s *InvitationService) Verify(ctx context.Context, token string) (*InvitationSummary, error) {
	invitation, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	if invitation.Status != userdata.InvitationPending {
		return nil, ErrNotFound
	}

	return &InvitationSummary{
		InvitationId: invitation.Id,
		TeamId:       invitation.TeamId,
		TeamName:     teamName(invitation),
		Email:        invitation.Email,
		Role:         invitation.Role,
		CreatedAt:    invitation.CreatedAt,
	}, nil
}

// AcceptByToken consumes the invitation. Authenticated callers are added to
// the team before the status transition; unauthenticated callers consume the
// invitation and finish joining after signing in. The conditional transition
// makes acceptance at-most-once: under concurrent or retried calls a single
// caller wins and the rest get ErrAlreadyProcessed.
func (s *InvitationService) AcceptByToken(ctx context.Context, token, callerEmail string, callerUserId *int64) (*AcceptResult, error) {
	invitation, err := s.resolvable(ctx, token, callerEmail)
	if err != nil {
		return nil, err
	}

	if callerUserId != nil {
		err := s.teams.AddMember(ctx, userdata.TeamToUser{
			TeamId:   invitation.TeamId,
			UserId:   *callerUserId,
			Role:     invitation.Role,
			JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
	}

	ok, err := s.invitations.TransitionFromPending(ctx, invitation.Id, userdata.InvitationAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyProcessed
	}

	return &AcceptResult{
		TeamId:         invitation.TeamId,
		TeamName:       teamName(invitation),
		RequiresSignIn: callerUserId == nil,
	}, nil
}

// DeclineByToken resolves the invitation as declined, with the same email
// binding and double-processing guard as acceptance.
func (s *InvitationService) DeclineByToken(ctx context.Context, token, callerEmail string) error {
	invitation, err := s.resolvable(ctx, token, callerEmail)
	if err != nil {
		return err
	}

	ok, err := s.invitations.TransitionFromPending(ctx, invitation.Id, userdata.InvitationDeclined)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyProcessed
	}

	return nil
}

func (s *InvitationService) lookup(ctx context.Context, token string) (*userdata.Invitation, error) {
	claims, err := tokens.DecodeInvite(token, s.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	invitation, err := s.invitations.GetInvitation(ctx, claims.InvitationId)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrNotFound
	}

	return invitation, nil
}

// resolvable is the shared accept/decline discipline: decode, look up,
// bind the caller's email, then reject invitations that already left
// pending. The email check runs first so a wrong email never learns the
// invitation's state.
func (s *InvitationService) resolvable(ctx context.Context, token, callerEmail string) (*userdata.Invitation, error) {
	invitation, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(callerEmail), invitation.Email) {
		return nil, ErrEmailMismatch
	}

	if invitation.Status != userdata.InvitationPending {
		return nil, ErrAlreadyProcessed
	}

	return invitation, nil
}

func teamName(invitation *userdata.Invitation) string {
	if invitation.Team != nil {
		return invitation.Team.Name
	}
	return ""
}
