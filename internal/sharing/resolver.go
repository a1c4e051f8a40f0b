package sharing

import (
	"fmt"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
)

// The resolver models resolution internally as an orthogonal constraint
// set and projects it down to the closed five-value visibility enum at
// the boundary. Team and shared-folder policies contribute constraints
// independently, so incompatible requests compose (team-only plus a
// password mandate becomes team_and_password) instead of being rejected.
// Rejection of disallowed requested values is a write-time concern; see
// ValidateRequested.

// constraintSet is the open composition space behind the closed enum.
type constraintSet struct {
	teamOnly          bool
	passwordRequired  bool
	folderMembersOnly bool
}

func (c constraintSet) union(o constraintSet) constraintSet {
	return constraintSet{
		teamOnly:          c.teamOnly || o.teamOnly,
		passwordRequired:  c.passwordRequired || o.passwordRequired,
		folderMembersOnly: c.folderMembersOnly || o.folderMembersOnly,
	}
}

// visibility collapses the constraint set to the closed enum.
// folderMembersOnly dominates as the strictest standalone category; a
// simultaneous password mandate is not representable as a sixth value,
// so callers combining the two must also consult the policy flags.
func (c constraintSet) visibility() policy.ResolvedVisibility {
	switch {
	case c.folderMembersOnly:
		return policy.SharedFolderOnly
	case c.teamOnly && c.passwordRequired:
		return policy.TeamAndPassword
	case c.passwordRequired:
		return policy.Password
	case c.teamOnly:
		return policy.TeamOnly
	}
	return policy.Public
}

// requestedConstraints maps a requested visibility to the constraints it
// implies on its own.
func requestedConstraints(v link.RequestedVisibility) constraintSet {
	switch v {
	case link.RequestedTeamOnly:
		return constraintSet{teamOnly: true}
	case link.RequestedPassword:
		return constraintSet{passwordRequired: true}
	}
	return constraintSet{}
}

// policyConstraints derives the constraint floor a policy imposes on a
// request. When the requested value is disallowed the floor is that of
// the least restrictive value the policy does allow, so the resolved
// visibility is the most restrictive value compatible with the policy
// rather than a rejection.
func policyConstraints(p *policy.Policy, requested link.RequestedVisibility) constraintSet {
	if p == nil {
		return constraintSet{}
	}

	cs := constraintSet{}
	if p.ForcesPassword {
		cs.passwordRequired = true
	}
	if p.MembersOnly {
		cs.folderMembersOnly = true
	}

	if !p.Allows(requested) {
		floor := link.RequestedPassword
		floorRank := requestedRank(floor)
		for _, allowed := range p.AllowedVisibilities {
			if r := requestedRank(allowed); r < floorRank {
				floor, floorRank = allowed, r
			}
		}
		cs = cs.union(requestedConstraints(floor))
	}

	return cs
}

func requestedRank(v link.RequestedVisibility) int {
	switch v {
	case link.RequestedPublic:
		return 0
	case link.RequestedTeamOnly:
		return 1
	case link.RequestedPassword:
		return 2
	}
	return 3
}

// ResolveInput carries everything visibility resolution depends on.
type ResolveInput struct {
	Requested    link.RequestedVisibility
	TeamPolicy   *policy.Policy
	FolderPolicy *policy.Policy
	HasPassword  bool
}

// ResolveVisibility computes the enforced access level for a link. Pure;
// no side effects.
func ResolveVisibility(in ResolveInput) policy.ResolvedVisibility {
	cs := requestedConstraints(in.Requested)
	if in.HasPassword {
		cs.passwordRequired = true
	}
	cs = cs.union(policyConstraints(in.TeamPolicy, in.Requested))
	cs = cs.union(policyConstraints(in.FolderPolicy, in.Requested))
	return cs.visibility()
}

// Resolve computes the full resolved access for a link, including
// whether the caller may revoke it. Revocation is limited to the link
// owner and members holding an administrative override.
func Resolve(in ResolveInput, caller Caller, ownerID, teamID uuid.UUID) policy.ResolvedAccess {
	out := policy.ResolvedAccess{Visibility: ResolveVisibility(in)}

	switch {
	case !caller.Authenticated:
		out.RevokeDenialReason = policy.DenialLoginRequired
	case caller.TeamID != teamID:
		out.RevokeDenialReason = policy.DenialTeamOnly
	case caller.MemberID != ownerID && !caller.Admin:
		out.RevokeDenialReason = policy.DenialOwnerOnly
	default:
		out.CanRevoke = true
	}

	return out
}

// ValidateRequested rejects requested visibilities disallowed by an
// active policy. This is the write-time counterpart to resolution:
// create and modify refuse disallowed values instead of silently
// downgrading them.
func ValidateRequested(requested link.RequestedVisibility, teamPolicy, folderPolicy *policy.Policy) error {
	if !requested.Valid() {
		return apperrors.Settings(fmt.Sprintf("unknown requested visibility %q", requested))
	}
	if !teamPolicy.Allows(requested) {
		return apperrors.Settings(fmt.Sprintf("team policy disallows %q links", requested))
	}
	if !folderPolicy.Allows(requested) {
		return apperrors.Settings(fmt.Sprintf("shared folder policy disallows %q links", requested))
	}
	return nil
}
