package service

import (
	"context"
	"sync"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/require"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/platform/platformtest"
)

const (
	testClientID     = "forum"
	testClientSecret = "hunter2"
)

func newExchangeFixture(t *testing.T) (*TokenExchanger, *CodeIssuer, *platformtest.Fake) {
	t.Helper()
	fake := platformtest.New()
	database := testDB(t)
	issuer := &CodeIssuer{Sessions: NewSessionStore(), DB: database}
	exchanger := &TokenExchanger{
		DB:           database,
		Platform:     fake,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}
	return exchanger, issuer, fake
}

func issuedCode(t *testing.T, issuer *CodeIssuer, fake *platformtest.Fake) string {
	t.Helper()
	channel, err := fake.CreateChannel(context.Background(), "LoginBot group test")
	require.NoError(t, err)
	fake.Join(channel, model.Identity{Ref: 7, Name: "alice", Addr: "alice@example.org"})
	handle := verifiedSession(t, issuer.Sessions, 7)
	code, err := issuer.IssueCode(handle)
	require.NoError(t, err)
	return code
}

// Credential checks happen before any store access: with a nil store handle a
// lookup would panic, so reaching ClientMismatchErr proves the order.
func TestExchangeRejectsClientMismatchBeforeStoreAccess(t *testing.T) {
	exchanger := &TokenExchanger{
		DB:           nil,
		Platform:     platformtest.New(),
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}

	_, err := exchanger.Exchange(context.Background(), "wrong", testClientSecret, "whatever")
	require.ErrorIs(t, err, model.ClientMismatchErr)
	_, err = exchanger.Exchange(context.Background(), testClientID, "wrong", "whatever")
	require.ErrorIs(t, err, model.ClientMismatchErr)
}

func TestExchangeReturnsAssertion(t *testing.T) {
	exchanger, issuer, fake := newExchangeFixture(t)
	code := issuedCode(t, issuer, fake)

	assertion, err := exchanger.Exchange(context.Background(), testClientID, testClientSecret, code)
	require.NoError(t, err)
	require.NotEmpty(t, assertion.AccessToken)
	require.Equal(t, "bearer", assertion.TokenType)
	require.Equal(t, 1, assertion.ExpiresIn)
	require.Equal(t, "alice", assertion.Info.Username)
	require.Equal(t, "alice@example.org", assertion.Info.Email)
}

func TestExchangeConsumesExactlyOnce(t *testing.T) {
	exchanger, issuer, fake := newExchangeFixture(t)
	code := issuedCode(t, issuer, fake)

	_, err := exchanger.Exchange(context.Background(), testClientID, testClientSecret, code)
	require.NoError(t, err)

	// consumption deletes the record in both directions, there is no
	// consumed-but-present state
	require.NoError(t, exchanger.DB.View(func(tx *bolt.Tx) error {
		require.Nil(t, tx.Bucket([]byte(model.BucketCode)).Get([]byte(code)))
		require.Nil(t, tx.Bucket([]byte(model.BucketIdentity)).Get(model.IdentityRef(7).Bytes()))
		return nil
	}))

	_, err = exchanger.Exchange(context.Background(), testClientID, testClientSecret, code)
	require.ErrorIs(t, err, model.InvalidGrantErr)
}

func TestExchangeConcurrentRedemptions(t *testing.T) {
	exchanger, issuer, fake := newExchangeFixture(t)
	code := issuedCode(t, issuer, fake)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = exchanger.Exchange(context.Background(), testClientID, testClientSecret, code)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, model.InvalidGrantErr)
		}
	}
	require.Equal(t, 1, succeeded)
}

func TestExchangeUnknownCode(t *testing.T) {
	exchanger, _, _ := newExchangeFixture(t)

	_, err := exchanger.Exchange(context.Background(), testClientID, testClientSecret, "nope")
	require.ErrorIs(t, err, model.InvalidGrantErr)
}

func TestExchangeAnnounces(t *testing.T) {
	exchanger, issuer, fake := newExchangeFixture(t)
	code := issuedCode(t, issuer, fake)

	var announced model.Identity
	exchanger.Announce = func(identity model.Identity) { announced = identity }

	_, err := exchanger.Exchange(context.Background(), testClientID, testClientSecret, code)
	require.NoError(t, err)
	require.Equal(t, "alice@example.org", announced.Addr)
}
