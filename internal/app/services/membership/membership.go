// Package membership implements the workspace, invite, and channel
// workflows. Each workflow is a fixed sequence of independent writes;
// nothing is rolled back, and a failure after the first write is reported
// as an *apperr.PartialError naming the step that failed.
package membership

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	channelstore "github.com/enidea/slack-clone/internal/app/store/channels"
	"github.com/enidea/slack-clone/internal/app/store/docstore"
	invitestore "github.com/enidea/slack-clone/internal/app/store/invites"
	membershipstore "github.com/enidea/slack-clone/internal/app/store/memberships"
	userstore "github.com/enidea/slack-clone/internal/app/store/users"
	workspacestore "github.com/enidea/slack-clone/internal/app/store/workspaces"
	"github.com/enidea/slack-clone/internal/app/system/apperr"
	"github.com/enidea/slack-clone/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type Service struct {
	workspaces *workspacestore.Store
	members    *membershipstore.Store
	invites    *invitestore.Store
	channels   *channelstore.Store
	users      *userstore.Store
	logger     *zap.Logger

	now       func() time.Time
	inviteTTL time.Duration
	newCode   func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInviteTTL overrides the invite lifetime.
func WithInviteTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.inviteTTL = d
		}
	}
}

// WithCodeSource replaces the invite code generator.
func WithCodeSource(fn func() (string, error)) Option {
	return func(s *Service) { s.newCode = fn }
}

func New(gw docstore.Gateway, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		inviteTTL: models.InviteTTL,
		newCode:   randomCode,
	}
	for _, o := range opts {
		o(s)
	}
	s.workspaces = workspacestore.New(gw).WithClock(s.now)
	s.members = membershipstore.New(gw)
	s.invites = invitestore.New(gw)
	s.channels = channelstore.New(gw)
	s.users = userstore.New(gw)
	return s
}

// randomCode returns 26 lowercase base32 characters drawn from 16 random
// bytes.
func randomCode() (string, error) {
	b := securecookie.GenerateRandomKey(16)
	if b == nil {
		return "", errors.New("invite code: random source failed")
	}
	return strings.ToLower(codeEncoding.EncodeToString(b)), nil
}

// Result identifies the workspace a workflow ended on.
type Result struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Workspaces                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateWorkspace writes the workspace and then the owner's membership.
// If the membership write fails the workspace is left without one.
func (s *Service) CreateWorkspace(ctx context.Context, name, description, ownerID string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, apperr.Invalid("name", "workspace name is required")
	}
	if ownerID == "" {
		return Result{}, apperr.Invalid("owner_id", "owner is required")
	}

	ws := workspacestore.NewWorkspace(name, description, ownerID, s.now())
	id, err := s.workspaces.Post(ctx, ws)
	if err != nil {
		return Result{}, fmt.Errorf("create workspace: %w", err)
	}

	if err := s.addMember(ctx, "create workspace", id, ownerID, models.RoleOwner); err != nil {
		s.logger.Warn("workspace created without complete owner membership",
			zap.String("workspace_id", id),
			zap.String("owner_id", ownerID),
			zap.Error(err))
		return Result{WorkspaceID: id, Name: ws.Name}, err
	}

	s.logger.Info("workspace created",
		zap.String("workspace_id", id),
		zap.String("owner_id", ownerID))
	return Result{WorkspaceID: id, Name: ws.Name}, nil
}

// AddWorkspaceMember writes a membership and then appends userID to the
// workspace's member_ids.
func (s *Service) AddWorkspaceMember(ctx context.Context, workspaceID, userID, role string) error {
	if workspaceID == "" || userID == "" {
		return apperr.Invalid("member", "workspace and user are required")
	}
	if !models.ValidRole(role) {
		return apperr.Invalid("role", fmt.Sprintf("unknown role %q", role))
	}
	return s.addMember(ctx, "add member", workspaceID, userID, role)
}

func (s *Service) addMember(ctx context.Context, op, workspaceID, userID, role string) error {
	m := membershipstore.NewMember(userID, workspaceID, role, s.now())
	if _, err := s.members.Post(ctx, m); err != nil {
		return &apperr.PartialError{Op: op, Step: apperr.StepMembership, WorkspaceID: workspaceID, Err: err}
	}
	if err := s.workspaces.AppendMember(ctx, workspaceID, userID); err != nil {
		return &apperr.PartialError{Op: op, Step: apperr.StepMemberIDs, WorkspaceID: workspaceID, Err: err}
	}
	return nil
}

// IsUserWorkspaceMember reports whether a membership record exists. It is
// a pre-check only; two concurrent joins can both pass it.
func (s *Service) IsUserWorkspaceMember(ctx context.Context, userID, workspaceID string) (bool, error) {
	return s.members.Exists(ctx, userID, workspaceID)
}

// Workspace point-reads one workspace.
func (s *Service) Workspace(ctx context.Context, workspaceID string) (models.Workspace, error) {
	return s.workspaces.Get(ctx, workspaceID)
}

// Member is one row of a workspace's member list.
type Member struct {
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture"`
	Role           string    `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
}

// ListMembers returns every membership in workspaceID joined with the
// member's user record. Members whose user record is missing are listed
// without profile fields.
func (s *Service) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	refs, err := s.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(refs))
	for _, r := range refs {
		m := Member{UserID: r.Member.UserID, Role: r.Member.Role, JoinedAt: r.Member.JoinedAt}
		u, err := s.users.Get(ctx, r.Member.UserID)
		switch {
		case err == nil:
			m.DisplayName, m.Email, m.ProfilePicture = u.DisplayName, u.Email, u.ProfilePicture
		case !errors.Is(err, userstore.ErrNotFound):
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Invites                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// GenerateInviteCode writes a new active invite and returns its code.
// Codes are not checked against existing ones, and earlier invites for the
// workspace stay active.
func (s *Service) GenerateInviteCode(ctx context.Context, workspaceID string) (string, error) {
	if workspaceID == "" {
		return "", apperr.Invalid("workspace_id", "workspace is required")
	}
	code, err := s.newCode()
	if err != nil {
		return "", err
	}
	inv := invitestore.NewInvite(workspaceID, code, s.now(), s.inviteTTL)
	if _, err := s.invites.Post(ctx, inv); err != nil {
		return "", fmt.Errorf("generate invite: %w", err)
	}
	s.logger.Info("invite generated",
		zap.String("workspace_id", workspaceID),
		zap.Time("expires_at", inv.ExpiresAt))
	return code, nil
}

// ResolveInvite finds the workspace an invite code grants access to. The
// code must match an active invite that has not expired and whose
// workspace still exists; otherwise the error is apperr.ErrInvalidInvite.
// Expiry is checked here even when the invite is still flagged active.
func (s *Service) ResolveInvite(ctx context.Context, code string) (models.WorkspaceRef, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.WorkspaceRef{}, fmt.Errorf("%w: empty code", apperr.ErrInvalidInvite)
	}

	inv, found, err := s.invites.FindActiveByCode(ctx, code)
	if err != nil {
		return models.WorkspaceRef{}, err
	}
	if !found {
		return models.WorkspaceRef{}, fmt.Errorf("%w: no active invite", apperr.ErrInvalidInvite)
	}
	if inv.Invite.Expired(s.now()) {
		return models.WorkspaceRef{}, fmt.Errorf("%w: expired at %s", apperr.ErrInvalidInvite, inv.Invite.ExpiresAt.Format(time.RFC3339))
	}

	ws, err := s.workspaces.Get(ctx, inv.Invite.WorkspaceID)
	if errors.Is(err, workspacestore.ErrNotFound) {
		return models.WorkspaceRef{}, fmt.Errorf("%w: workspace no longer exists", apperr.ErrInvalidInvite)
	}
	if err != nil {
		return models.WorkspaceRef{}, err
	}
	return models.WorkspaceRef{ID: inv.Invite.WorkspaceID, Workspace: ws}, nil
}

// JoinWorkspaceByInviteCode redeems code for userID. The invite stays
// active afterwards, so any number of users may redeem it until it
// expires.
func (s *Service) JoinWorkspaceByInviteCode(ctx context.Context, userID, code string) (Result, error) {
	if userID == "" {
		return Result{}, apperr.Invalid("user_id", "user is required")
	}

	ws, err := s.ResolveInvite(ctx, code)
	if err != nil {
		return Result{}, err
	}

	member, err := s.IsUserWorkspaceMember(ctx, userID, ws.ID)
	if err != nil {
		return Result{}, err
	}
	if member {
		return Result{}, apperr.ErrAlreadyMember
	}

	res := Result{WorkspaceID: ws.ID, Name: ws.Workspace.Name}
	if err := s.addMember(ctx, "join workspace", ws.ID, userID, models.RoleMember); err != nil {
		return res, err
	}

	s.logger.Info("joined workspace by invite",
		zap.String("workspace_id", ws.ID),
		zap.String("user_id", userID))
	return res, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Channels                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateChannel writes a channel in workspaceID and returns its id.
func (s *Service) CreateChannel(ctx context.Context, workspaceID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("name", "channel name is required")
	}
	if workspaceID == "" {
		return "", apperr.Invalid("workspace_id", "workspace is required")
	}
	id, err := s.channels.Post(ctx, channelstore.NewChannel(name, workspaceID, s.now()))
	if err != nil {
		return "", fmt.Errorf("create channel: %w", err)
	}
	return id, nil
}
