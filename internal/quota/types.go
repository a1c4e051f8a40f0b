package quota

import "github.com/google/uuid"

const (
	// MaxBatchSize bounds every batch quota call. Exceeding it fails the
	// whole call before any per-member processing.
	MaxBatchSize = 1000

	// MinQuotaGB is the smallest custom quota that can be assigned.
	// Quotas are integer gigabytes where 1024 GB = 1 TB.
	MinQuotaGB = 25
)

// CustomQuota is a per-member storage limit override. Absence of a record
// means the team default applies.
type CustomQuota struct {
	MemberID uuid.UUID
	QuotaGB  uint32
}

// Entry is one (member, quota) pair in a batch set call.
type Entry struct {
	MemberID uuid.UUID
	QuotaGB  uint32
}

// ResultStatus tags a per-member batch outcome.
type ResultStatus string

const (
	StatusSuccess     ResultStatus = "success"
	StatusInvalidUser ResultStatus = "invalid_user"
)

// Result is one per-member outcome in a batch response. QuotaGB is nil
// for invalid users and for members with no override, which is a normal
// state rather than an error.
type Result struct {
	MemberID uuid.UUID
	Status   ResultStatus
	QuotaGB  *uint32
}
