package policy

import "sharelink-service/internal/domain/link"

// ResolvedVisibility is the enforced access level of a shared link after
// team and shared-folder policies are applied. It is a strict superset of
// the requested values because two independent constraints can compose.
type ResolvedVisibility string

const (
	Public           ResolvedVisibility = "public"
	TeamOnly         ResolvedVisibility = "team_only"
	Password         ResolvedVisibility = "password"
	TeamAndPassword  ResolvedVisibility = "team_and_password"
	SharedFolderOnly ResolvedVisibility = "shared_folder_only"
)

// Rank orders resolved visibilities from least to most restrictive.
// Used by the resolver and by monotonicity checks.
func (v ResolvedVisibility) Rank() int {
	switch v {
	case Public:
		return 0
	case TeamOnly:
		return 1
	case Password:
		return 2
	case TeamAndPassword:
		return 3
	case SharedFolderOnly:
		return 4
	}
	return -1
}

// Policy is a read-only snapshot of a team-level or shared-folder-level
// link policy sourced from external configuration.
type Policy struct {
	// AllowedVisibilities whitelists the values an owner may request.
	// Empty means every requested value is allowed.
	AllowedVisibilities []link.RequestedVisibility

	// ForcesPassword mandates a password on every link under this policy.
	ForcesPassword bool

	// MembersOnly restricts access to the shared folder's membership.
	// Only meaningful on folder policies.
	MembersOnly bool
}

// Allows reports whether the policy permits the requested visibility.
func (p *Policy) Allows(v link.RequestedVisibility) bool {
	if p == nil || len(p.AllowedVisibilities) == 0 {
		return true
	}
	for _, allowed := range p.AllowedVisibilities {
		if allowed == v {
			return true
		}
	}
	return false
}

// DenialReason explains why access or revocation was refused. The same
// taxonomy serves both "why can't you access" and "why can't you revoke".
type DenialReason string

const (
	DenialLoginRequired       DenialReason = "login_required"
	DenialEmailVerifyRequired DenialReason = "email_verify_required"
	DenialPasswordRequired    DenialReason = "password_required"
	DenialTeamOnly            DenialReason = "team_only"
	DenialOwnerOnly           DenialReason = "owner_only"
	DenialExpired             DenialReason = "expired"
)

// ResolvedAccess is the output of the visibility resolver.
type ResolvedAccess struct {
	Visibility         ResolvedVisibility
	CanRevoke          bool
	RevokeDenialReason DenialReason // set iff CanRevoke is false
}
