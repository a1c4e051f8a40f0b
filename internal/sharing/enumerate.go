package sharing

import (
	"context"
	"sort"
	"strings"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"
)

const (
	defaultPageSize = 100

	errCursorStale = "link set changed since the cursor was issued; restart the listing"
)

// Enumerator answers "which links grant access to this path" and pages
// through a caller's full link set. It holds no state between calls;
// cursors capture a snapshot position, never a lock.
type Enumerator struct {
	links    repository.LinkRepository
	paths    repository.PathResolver
	pageSize int
}

func NewEnumerator(links repository.LinkRepository, paths repository.PathResolver, pageSize int) *Enumerator {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Enumerator{links: links, paths: paths, pageSize: pageSize}
}

// ListRequest selects between the two listing modes: path-scoped
// (bounded by path depth, returned whole) and owner-scoped (unbounded,
// cursor-paginated).
type ListRequest struct {
	Path       *string
	Cursor     *string
	DirectOnly bool
}

type ListResult struct {
	Records    []*link.Record
	HasMore    bool
	NextCursor *string
}

func (e *Enumerator) List(ctx context.Context, caller Caller, req ListRequest) (*ListResult, error) {
	if req.Path == nil {
		return e.listOwned(ctx, caller, req.Cursor)
	}
	return e.listAtPath(ctx, caller, *req.Path, req.DirectOnly)
}

// listOwned pages the caller's full link set in (CreatedAt, ID) order.
// The cursor's generation marker detects compacting rewrites beneath the
// caller; a shifted ordering surfaces as a reset, never as skipped or
// duplicated records.
func (e *Enumerator) listOwned(ctx context.Context, caller Caller, cursor *string) (*ListResult, error) {
	var after *repository.OwnerCursor
	var cursorGen uint64

	if cursor != nil {
		payload, err := decodeCursor(*cursor)
		if err != nil {
			return nil, err
		}
		after = payload.ownerCursor()
		cursorGen = payload.Generation
	}

	page, err := e.links.ListByOwner(ctx, caller.MemberID, after, e.pageSize)
	if err != nil {
		return nil, err
	}
	if cursor != nil && cursorGen != page.Generation {
		return nil, apperrors.CursorReset(errCursorStale)
	}

	result := &ListResult{Records: page.Records, HasMore: page.HasMore}
	if page.HasMore && len(page.Records) > 0 {
		last := page.Records[len(page.Records)-1]
		next := encodeCursor(cursorPayload{
			CreatedAtUnixNano: last.CreatedAt.UnixNano(),
			LinkID:            last.ID,
			Generation:        page.Generation,
		})
		result.NextCursor = &next
	}
	return result, nil
}

// listAtPath returns the direct link on path and, unless directOnly,
// every ancestor-folder link that also grants access, most specific
// first. The walk is bounded by path depth, so the whole set fits one
// page and no cursor is issued.
func (e *Enumerator) listAtPath(ctx context.Context, caller Caller, rawPath string, directOnly bool) (*ListResult, error) {
	path, err := link.NormalizePath(rawPath)
	if err != nil {
		return nil, err
	}

	// A path with no filesystem entry is a lookup failure, not an empty
	// listing; callers must be able to tell the two apart.
	if _, err := e.paths.Stat(ctx, caller.TeamID, path); err != nil {
		return nil, err
	}

	lookup := []string{path}
	if !directOnly {
		lookup = append(lookup, link.Ancestors(path)...)
	}

	records, err := e.links.ListByPaths(ctx, caller.TeamID, lookup)
	if err != nil {
		return nil, err
	}
	sortLeafFirst(records)

	return &ListResult{Records: records}, nil
}

// sortLeafFirst orders records most specific path first, tie-broken by
// creation time then link id for stability.
func sortLeafFirst(records []*link.Record) {
	depth := func(p string) int {
		if p == "/" {
			return 0
		}
		return strings.Count(p, "/")
	}
	sort.Slice(records, func(i, j int) bool {
		di, dj := depth(records[i].OwningPath), depth(records[j].OwningPath)
		if di != dj {
			return di > dj
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
