// Package platform defines the boundary to the identity verification
// platform. The orchestrator only ever polls it; the platform's own event
// feed is drained by the adapter and never drives correctness.
package platform

import (
	"context"

	"github.com/deltachat-bot/deltachat-loginbot/model"
)

type Member struct {
	Ref  model.IdentityRef
	Self bool
}

type Platform interface {
	// CreateChannel creates a new protected channel and returns its id.
	CreateChannel(ctx context.Context, name string) (model.ChannelID, error)
	// InviteLink returns the securejoin link for the channel.
	InviteLink(ctx context.Context, channel model.ChannelID) (string, error)
	// InviteSVG returns a scannable rendering of the invite as SVG markup.
	InviteSVG(ctx context.Context, channel model.ChannelID) (string, error)
	// ListMembers reports the channel's current membership, marking which
	// member is the system's own identity.
	ListMembers(ctx context.Context, channel model.ChannelID) ([]Member, error)
	// SendNotice posts a text message into the channel. Best effort.
	SendNotice(ctx context.Context, channel model.ChannelID, text string) error
	// ResolveIdentity resolves a member ref to its display name and address.
	ResolveIdentity(ctx context.Context, ref model.IdentityRef) (model.Identity, error)
}
