// Package platformtest provides an in-memory platform.Platform for tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/platform"
)

// SelfRef is the fake platform's own identity in every channel it creates.
const SelfRef model.IdentityRef = 1

type Fake struct {
	mu          sync.Mutex
	nextChannel model.ChannelID
	names       map[model.ChannelID]string
	members     map[model.ChannelID][]platform.Member
	identities  map[model.IdentityRef]model.Identity
	notices     map[model.ChannelID][]string

	// Err, when set, fails every call.
	Err error

	CreateCalls int
}

var _ platform.Platform = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		names:      make(map[model.ChannelID]string),
		members:    make(map[model.ChannelID][]platform.Member),
		identities: make(map[model.IdentityRef]model.Identity),
		notices:    make(map[model.ChannelID][]string),
	}
}

func (f *Fake) CreateChannel(ctx context.Context, name string) (model.ChannelID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	f.CreateCalls++
	f.nextChannel++
	channel := f.nextChannel
	f.names[channel] = name
	f.members[channel] = []platform.Member{{Ref: SelfRef, Self: true}}
	return channel, nil
}

func (f *Fake) InviteLink(ctx context.Context, channel model.ChannelID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if _, ok := f.members[channel]; !ok {
		return "", fmt.Errorf("unknown channel %v", channel)
	}
	return fmt.Sprintf("OPENPGP4FPR:FAKE#g=%v", channel), nil
}

func (f *Fake) InviteSVG(ctx context.Context, channel model.ChannelID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if _, ok := f.members[channel]; !ok {
		return "", fmt.Errorf("unknown channel %v", channel)
	}
	return fmt.Sprintf("<svg><!-- channel %v --></svg>", channel), nil
}

func (f *Fake) ListMembers(ctx context.Context, channel model.ChannelID) ([]platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	members, ok := f.members[channel]
	if !ok {
		return nil, fmt.Errorf("unknown channel %v", channel)
	}
	out := make([]platform.Member, len(members))
	copy(out, members)
	return out, nil
}

func (f *Fake) SendNotice(ctx context.Context, channel model.ChannelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.notices[channel] = append(f.notices[channel], text)
	return nil
}

func (f *Fake) ResolveIdentity(ctx context.Context, ref model.IdentityRef) (model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return model.Identity{}, f.Err
	}
	identity, ok := f.identities[ref]
	if !ok {
		return model.Identity{}, fmt.Errorf("unknown identity %v", ref)
	}
	return identity, nil
}

// Join adds an external identity to a channel's membership.
func (f *Fake) Join(channel model.ChannelID, identity model.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[identity.Ref] = identity
	f.members[channel] = append(f.members[channel], platform.Member{Ref: identity.Ref})
}

// SetMembers overrides a channel's membership outright.
func (f *Fake) SetMembers(channel model.ChannelID, members []platform.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[channel] = members
}

// Notices returns the messages sent into a channel.
func (f *Fake) Notices(channel model.ChannelID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.notices[channel]))
	copy(out, f.notices[channel])
	return out
}

// ChannelName returns the name a channel was created with.
func (f *Fake) ChannelName(channel model.ChannelID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[channel]
}
