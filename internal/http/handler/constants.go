package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	msgInvalidRequestBody   = "invalid request body"
	msgPathRequired         = "path is required"
	msgURLRequired          = "url is required"
	msgInvalidVisibility    = "invalid requested_visibility"
	msgInvalidExpiresAt     = "expires_at must be RFC 3339"
	msgInvalidMemberID      = "invalid member id"
	msgMembersRequired      = "members is required"
	msgEntriesRequired      = "users_and_quotas is required"
	msgAdminRequired        = "team admin access required"
	msgLinkRevoked          = "shared link revoked"
	msgSettingsRequired     = "settings is required"
	msgPathCursorExclusive  = "path and cursor are mutually exclusive"
)
