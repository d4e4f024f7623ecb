package model

import (
	"time"

	"github.com/deltachat-bot/deltachat-loginbot/common"
)

// SessionExpire is the absolute TTL of a login session. Kept short on purpose:
// there is no logout button on the login page, so a stale cookie on a shared
// machine must not keep logging its owner in.
const SessionExpire = 15 * time.Minute

type SessionProgress int

// CODE_ISSUED -> CONSUMED happens in the durable code store at token exchange;
// the session itself never observes it and may already be gone by then.
const (
	SessionNew SessionProgress = iota
	SessionChannelCreated
	SessionAwaitingJoin
	SessionVerified
	SessionCodeIssued
)

type Session struct {
	ID               string
	ChannelRef       *ChannelID
	VerifiedIdentity *IdentityRef
	Notified         bool
	Progress         SessionProgress
	ExpireAt         time.Time
}

func (s *Session) Expired() bool {
	return common.Expired(s.ExpireAt)
}
