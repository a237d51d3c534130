package access

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const approvalCacheTTL = 30 * time.Second

// ApprovalList is the coarse product-level gate consulted before any
// per-owner authorization: is this email allowed to use the product at
// all. The static list comes from configuration; the dynamic check also
// admits anyone some owner has granted access to.
type ApprovalList struct {
	static map[string]bool
	grants GrantRepository
	cache  *redis.Client // nil disables caching
}

// NewApprovalList builds an ApprovalList from the configured static
// allow-list. cache may be nil.
func NewApprovalList(approvedEmails []string, grants GrantRepository, cache *redis.Client) *ApprovalList {
	static := make(map[string]bool, len(approvedEmails))
	for _, e := range approvedEmails {
		static[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return &ApprovalList{static: static, grants: grants, cache: cache}
}

// IsApproved reports whether the email is on the static allow-list.
// Matching is case-insensitive.
func (a *ApprovalList) IsApproved(email string) bool {
	return a.static[strings.ToLower(strings.TrimSpace(email))]
}

// IsApprovedAny reports whether the email is on the static list or is the
// target of any access grant from any owner. A storage failure propagates
// so the caller fails closed.
func (a *ApprovalList) IsApprovedAny(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if a.static[email] {
		return true, nil
	}

	if ok, hit := a.cachedApproval(ctx, email); hit {
		return ok, nil
	}

	granted, err := a.grants.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("checking granted emails: %w", err)
	}

	a.storeApproval(ctx, email, granted)

	return granted, nil
}

// cachedApproval consults Redis. Cache failures are logged and treated as
// a miss; the cache can never decide access on its own.
func (a *ApprovalList) cachedApproval(ctx context.Context, email string) (approved, hit bool) {
	if a.cache == nil {
		return false, false
	}

	val, err := a.cache.Get(ctx, approvalCacheKey(email)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("approval cache read failed", "error", err)
		}
		return false, false
	}

	return val == "1", true
}

func (a *ApprovalList) storeApproval(ctx context.Context, email string, approved bool) {
	if a.cache == nil {
		return
	}

	val := "0"
	if approved {
		val = "1"
	}

	if err := a.cache.Set(ctx, approvalCacheKey(email), val, approvalCacheTTL).Err(); err != nil {
		slog.Warn("approval cache write failed", "error", err)
	}
}

// Invalidate drops the cached approval for an email. Called after a grant
// or revoke so the decision does not lag behind by a full TTL.
func (a *ApprovalList) Invalidate(ctx context.Context, email string) {
	if a.cache == nil {
		return
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := a.cache.Del(ctx, approvalCacheKey(email)).Err(); err != nil {
		slog.Warn("approval cache invalidation failed", "error", err)
	}
}

func approvalCacheKey(email string) string {
	return "approval:" + email
}
