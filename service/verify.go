package service

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid"

	"github.com/deltachat-bot/deltachat-loginbot/common"
	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/platform"
)

const disposalNoticeText = "This chat is a vehicle to connect you with me, the loginbot. " +
	"You can leave this chat and delete it now."

// channelNameTokenLength keeps generated channel names short and human
// distinguishable. The token is random rather than derived from the session
// id so internal handles never leak into chat names.
const channelNameTokenLength = 5

type PollStatus int

const (
	PollWaiting PollStatus = iota
	PollSuccess
)

// Verifier drives the per-session verification state machine against the
// identity platform: create channel, poll membership, bind identity.
type Verifier struct {
	Sessions *SessionStore
	Platform platform.Platform
	// DisposalNotice enables the one-time courtesy message sent into the
	// channel once the join is observed. Optional side effect only.
	DisposalNotice bool
}

// StartVerification makes sure the session has a verification channel and
// returns its invite link. Calling it again on a session that already has a
// channel returns the existing channel's link, it never creates a second one.
func (v *Verifier) StartVerification(ctx context.Context, handle string) (link string, err error) {
	var channel model.ChannelID
	// The create-check-set runs under the session lock so two concurrent
	// starts cannot race into two channels for one session.
	if err := v.Sessions.Update(handle, func(session *model.Session) error {
		if session.ChannelRef != nil {
			channel = *session.ChannelRef
			return nil
		}
		token, err := gonanoid.Generate(common.Alphabet, channelNameTokenLength)
		if err != nil {
			return err
		}
		created, err := v.Platform.CreateChannel(ctx, fmt.Sprintf("LoginBot group %v", token))
		if err != nil {
			return err
		}
		session.ChannelRef = &created
		session.Progress = model.SessionChannelCreated
		channel = created
		log.Info("session %v: created verification channel %v", session.ID, created)
		return nil
	}); err != nil {
		return "", err
	}
	return v.Platform.InviteLink(ctx, channel)
}

// InviteSVG renders the current channel's invite as a scannable SVG.
func (v *Verifier) InviteSVG(ctx context.Context, handle string) (string, error) {
	session, err := v.Sessions.Get(handle)
	if err != nil {
		return "", err
	}
	if session.ChannelRef == nil {
		return "", model.NotReadyErr
	}
	return v.Platform.InviteSVG(ctx, *session.ChannelRef)
}

// HasChannel reports whether the session has a verification channel yet.
func (v *Verifier) HasChannel(handle string) bool {
	session, err := v.Sessions.Get(handle)
	return err == nil && session.ChannelRef != nil
}

// PollMembership queries the channel's membership and performs the one-time
// identity binding when the join is observed.
//
// Exactly two members means the external party has joined: the non-self
// member is bound to the session. One member means we are still waiting. Any
// other count is corruption and fails the request; we never guess which
// member is valid.
func (v *Verifier) PollMembership(ctx context.Context, handle string) (PollStatus, error) {
	session, err := v.Sessions.Get(handle)
	if err != nil {
		return PollWaiting, err
	}
	if session.ChannelRef == nil {
		return PollWaiting, model.NotReadyErr
	}
	if session.VerifiedIdentity != nil {
		// Already bound; re-polling is a no-op.
		return PollSuccess, nil
	}
	channel := *session.ChannelRef
	members, err := v.Platform.ListMembers(ctx, channel)
	if err != nil {
		return PollWaiting, err
	}
	switch len(members) {
	case 1:
		if err := v.Sessions.Update(handle, func(session *model.Session) error {
			if session.Progress < model.SessionAwaitingJoin {
				session.Progress = model.SessionAwaitingJoin
			}
			return nil
		}); err != nil {
			return PollWaiting, err
		}
		return PollWaiting, nil
	case 2:
		joined, err := nonSelfMember(members)
		if err != nil {
			log.Error("channel %v: %v", channel, err)
			return PollWaiting, model.InvariantViolationErr
		}
		return v.bind(ctx, handle, channel, joined)
	default:
		log.Error("channel %v has %v members, which must not happen", channel, len(members))
		return PollWaiting, model.InvariantViolationErr
	}
}

func nonSelfMember(members []platform.Member) (model.IdentityRef, error) {
	var joined *model.IdentityRef
	for i := range members {
		if members[i].Self {
			continue
		}
		if joined != nil {
			return 0, fmt.Errorf("more than one non-self member among %v", len(members))
		}
		joined = &members[i].Ref
	}
	if joined == nil {
		return 0, fmt.Errorf("no non-self member among %v", len(members))
	}
	return *joined, nil
}

func (v *Verifier) bind(ctx context.Context, handle string, channel model.ChannelID, joined model.IdentityRef) (PollStatus, error) {
	var notify bool
	if err := v.Sessions.Update(handle, func(session *model.Session) error {
		if session.VerifiedIdentity != nil {
			// Another poll won the race; the binding stands.
			return nil
		}
		session.VerifiedIdentity = &joined
		session.Progress = model.SessionVerified
		notify = !session.Notified
		session.Notified = true
		log.Info("session %v: bound identity %v from channel %v", session.ID, joined, channel)
		return nil
	}); err != nil {
		return PollWaiting, err
	}
	if notify && v.DisposalNotice {
		if err := v.Platform.SendNotice(ctx, channel, disposalNoticeText); err != nil {
			log.Warn("disposal notice to channel %v: %v", channel, err)
		}
	}
	return PollSuccess, nil
}
