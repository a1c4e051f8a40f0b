package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errLinkNotFound     = "shared link not found"
	errLinkExists       = "shared link already exists"
	errEntryNotFound    = "path does not exist"
	errCursorAnchorGone = "listing anchor no longer exists"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedCreateLinkFmt    = "failed to create shared link: %w"
	errFailedGetLinkFmt       = "failed to get shared link: %w"
	errFailedListLinksFmt     = "failed to list shared links: %w"
	errFailedScanLinkFmt      = "failed to scan shared link: %w"
	errFailedUpdateLinkFmt    = "failed to update shared link: %w"
	errFailedDeleteLinkFmt    = "failed to delete shared link: %w"
	errFailedGetGenerationFmt = "failed to get repository generation: %w"

	errFailedGetQuotasFmt   = "failed to get custom quotas: %w"
	errFailedScanQuotaFmt   = "failed to scan custom quota: %w"
	errFailedUpsertQuotaFmt = "failed to upsert custom quota: %w"
	errFailedRemoveQuotaFmt = "failed to remove custom quota: %w"

	errFailedGetPolicyFmt = "failed to get link policy: %w"
	errFailedStatPathFmt  = "failed to stat path: %w"
	errFailedGetMemberFmt = "failed to get team member: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedCreateLink           = func(err error) error { return fmt.Errorf(errFailedCreateLinkFmt, err) }
	errFailedGetLink              = func(err error) error { return fmt.Errorf(errFailedGetLinkFmt, err) }
	errFailedListLinks            = func(err error) error { return fmt.Errorf(errFailedListLinksFmt, err) }
	errFailedScanLink             = func(err error) error { return fmt.Errorf(errFailedScanLinkFmt, err) }
	errFailedUpdateLink           = func(err error) error { return fmt.Errorf(errFailedUpdateLinkFmt, err) }
	errFailedDeleteLink           = func(err error) error { return fmt.Errorf(errFailedDeleteLinkFmt, err) }
	errFailedGetGeneration        = func(err error) error { return fmt.Errorf(errFailedGetGenerationFmt, err) }
	errFailedGetQuotas            = func(err error) error { return fmt.Errorf(errFailedGetQuotasFmt, err) }
	errFailedScanQuota            = func(err error) error { return fmt.Errorf(errFailedScanQuotaFmt, err) }
	errFailedUpsertQuota          = func(err error) error { return fmt.Errorf(errFailedUpsertQuotaFmt, err) }
	errFailedRemoveQuota          = func(err error) error { return fmt.Errorf(errFailedRemoveQuotaFmt, err) }
	errFailedGetPolicy            = func(err error) error { return fmt.Errorf(errFailedGetPolicyFmt, err) }
	errFailedStatPath             = func(err error) error { return fmt.Errorf(errFailedStatPathFmt, err) }
	errFailedGetMember            = func(err error) error { return fmt.Errorf(errFailedGetMemberFmt, err) }
)
