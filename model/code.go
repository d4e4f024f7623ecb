package model

import (
	"time"

	"github.com/deltachat-bot/deltachat-loginbot/common"
)

const (
	// BucketCode maps code -> AuthorizationCode and is the authoritative
	// direction; BucketIdentity maps identity ref -> code and only serves
	// reissue and revocation lookups.
	BucketCode     = "code"
	BucketIdentity = "identity"

	// CodeExpire is the validity window of an authorization code, enforced
	// at redemption even if the store entry is still present.
	CodeExpire = 10 * time.Minute
)

// AuthorizationCode is the stored record behind an issued code. Consumption
// is terminal and implemented as deletion: a present, unexpired record is a
// redeemable code.
type AuthorizationCode struct {
	Code     string
	Identity IdentityRef
	IssuedAt time.Time
}

func (c *AuthorizationCode) Expired() bool {
	return common.Expired(c.IssuedAt.Add(CodeExpire))
}
