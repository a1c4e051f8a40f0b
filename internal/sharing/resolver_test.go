package sharing

import (
	"errors"
	"testing"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveVisibility(t *testing.T) {
	teamOnlyPolicy := &policy.Policy{
		AllowedVisibilities: []link.RequestedVisibility{link.RequestedTeamOnly},
	}
	passwordOnlyPolicy := &policy.Policy{
		AllowedVisibilities: []link.RequestedVisibility{link.RequestedPassword},
	}

	tests := []struct {
		name     string
		in       ResolveInput
		expected policy.ResolvedVisibility
	}{
		{
			"no policies, public stays public",
			ResolveInput{Requested: link.RequestedPublic},
			policy.Public,
		},
		{
			"no policies, team_only honored",
			ResolveInput{Requested: link.RequestedTeamOnly},
			policy.TeamOnly,
		},
		{
			"no policies, password honored",
			ResolveInput{Requested: link.RequestedPassword},
			policy.Password,
		},
		{
			"link password alone forces password",
			ResolveInput{Requested: link.RequestedPublic, HasPassword: true},
			policy.Password,
		},
		{
			"team forces password on public request",
			ResolveInput{
				Requested:  link.RequestedPublic,
				TeamPolicy: &policy.Policy{ForcesPassword: true},
			},
			policy.Password,
		},
		{
			"team restricts public to team_only",
			ResolveInput{Requested: link.RequestedPublic, TeamPolicy: teamOnlyPolicy},
			policy.TeamOnly,
		},
		{
			"team_only plus password mandate composes",
			ResolveInput{
				Requested:  link.RequestedTeamOnly,
				TeamPolicy: &policy.Policy{ForcesPassword: true},
			},
			policy.TeamAndPassword,
		},
		{
			"independent team and folder constraints compose",
			ResolveInput{
				Requested:    link.RequestedPublic,
				TeamPolicy:   teamOnlyPolicy,
				FolderPolicy: passwordOnlyPolicy,
			},
			policy.TeamAndPassword,
		},
		{
			"folder members_only dominates",
			ResolveInput{
				Requested:    link.RequestedPublic,
				FolderPolicy: &policy.Policy{MembersOnly: true},
			},
			policy.SharedFolderOnly,
		},
		{
			"members_only dominates even with password mandate",
			ResolveInput{
				Requested:    link.RequestedPassword,
				FolderPolicy: &policy.Policy{MembersOnly: true, ForcesPassword: true},
			},
			policy.SharedFolderOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveVisibility(tt.in))
		})
	}
}

// Adding a policy constraint must never lower the resolved visibility
// below what the same input resolves to without it.
func TestResolveVisibilityMonotonic(t *testing.T) {
	requested := []link.RequestedVisibility{
		link.RequestedPublic, link.RequestedTeamOnly, link.RequestedPassword,
	}
	policies := []*policy.Policy{
		nil,
		{},
		{ForcesPassword: true},
		{MembersOnly: true},
		{AllowedVisibilities: []link.RequestedVisibility{link.RequestedTeamOnly}},
		{AllowedVisibilities: []link.RequestedVisibility{link.RequestedPassword}, ForcesPassword: true},
	}

	for _, req := range requested {
		for _, hasPassword := range []bool{false, true} {
			base := ResolveVisibility(ResolveInput{Requested: req, HasPassword: hasPassword})
			for _, teamPolicy := range policies {
				for _, folderPolicy := range policies {
					resolved := ResolveVisibility(ResolveInput{
						Requested:    req,
						TeamPolicy:   teamPolicy,
						FolderPolicy: folderPolicy,
						HasPassword:  hasPassword,
					})
					assert.GreaterOrEqual(t, resolved.Rank(), base.Rank(),
						"requested=%s hasPassword=%v team=%+v folder=%+v", req, hasPassword, teamPolicy, folderPolicy)
				}
			}
		}
	}
}

func TestResolveRevocation(t *testing.T) {
	ownerID := uuid.New()
	teamID := uuid.New()
	in := ResolveInput{Requested: link.RequestedPublic}

	tests := []struct {
		name           string
		caller         Caller
		canRevoke      bool
		expectedReason policy.DenialReason
	}{
		{
			"owner can revoke",
			Caller{MemberID: ownerID, TeamID: teamID, Authenticated: true},
			true, "",
		},
		{
			"team admin can revoke",
			Caller{MemberID: uuid.New(), TeamID: teamID, Admin: true, Authenticated: true},
			true, "",
		},
		{
			"anonymous needs login",
			Caller{},
			false, policy.DenialLoginRequired,
		},
		{
			"other team denied",
			Caller{MemberID: uuid.New(), TeamID: uuid.New(), Authenticated: true},
			false, policy.DenialTeamOnly,
		},
		{
			"non-owner teammate denied",
			Caller{MemberID: uuid.New(), TeamID: teamID, Authenticated: true},
			false, policy.DenialOwnerOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := Resolve(in, tt.caller, ownerID, teamID)
			assert.Equal(t, tt.canRevoke, access.CanRevoke)
			assert.Equal(t, tt.expectedReason, access.RevokeDenialReason)
		})
	}
}

func TestValidateRequested(t *testing.T) {
	teamOnlyPolicy := &policy.Policy{
		AllowedVisibilities: []link.RequestedVisibility{link.RequestedTeamOnly},
	}

	tests := []struct {
		name         string
		requested    link.RequestedVisibility
		teamPolicy   *policy.Policy
		folderPolicy *policy.Policy
		shouldErr    bool
	}{
		{"allowed with no policies", link.RequestedPublic, nil, nil, false},
		{"allowed by policy", link.RequestedTeamOnly, teamOnlyPolicy, nil, false},
		{"disallowed by team policy", link.RequestedPublic, teamOnlyPolicy, nil, true},
		{"disallowed by folder policy", link.RequestedPublic, nil, teamOnlyPolicy, true},
		{"unknown value", link.RequestedVisibility("friends_only"), nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequested(tt.requested, tt.teamPolicy, tt.folderPolicy)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrSettings))
				return
			}
			assert.NoError(t, err)
		})
	}
}
