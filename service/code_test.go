package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/deltachat-bot/deltachat-loginbot/model"
)

func testDB(t *testing.T) *bolt.DB {
	t.Helper()
	database, err := bolt.Open(filepath.Join(t.TempDir(), "bolt.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func verifiedSession(t *testing.T, store *SessionStore, identity model.IdentityRef) string {
	t.Helper()
	handle, err := store.Create()
	require.NoError(t, err)
	require.NoError(t, store.Update(handle, func(session *model.Session) error {
		channel := model.ChannelID(1)
		session.ChannelRef = &channel
		session.VerifiedIdentity = &identity
		session.Progress = model.SessionVerified
		return nil
	}))
	return handle
}

func TestIssueCodeRequiresVerifiedSession(t *testing.T) {
	issuer := &CodeIssuer{Sessions: NewSessionStore(), DB: testDB(t)}
	handle, err := issuer.Sessions.Create()
	require.NoError(t, err)

	_, err = issuer.IssueCode(handle)
	require.ErrorIs(t, err, model.NotVerifiedErr)
}

func TestIssueCodeWritesBothDirections(t *testing.T) {
	issuer := &CodeIssuer{Sessions: NewSessionStore(), DB: testDB(t)}
	handle := verifiedSession(t, issuer.Sessions, 7)

	code, err := issuer.IssueCode(handle)
	require.NoError(t, err)
	require.Len(t, code, 32)

	require.NoError(t, issuer.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(model.BucketCode)).Get([]byte(code))
		require.NotNil(t, b)
		var record model.AuthorizationCode
		require.NoError(t, jsoniter.Unmarshal(b, &record))
		require.Equal(t, model.IdentityRef(7), record.Identity)

		reverse := tx.Bucket([]byte(model.BucketIdentity)).Get(model.IdentityRef(7).Bytes())
		require.Equal(t, code, string(reverse))
		return nil
	}))

	session, err := issuer.Sessions.Get(handle)
	require.NoError(t, err)
	require.Equal(t, model.SessionCodeIssued, session.Progress)
}

func TestIssueCodeIdempotentReissue(t *testing.T) {
	issuer := &CodeIssuer{Sessions: NewSessionStore(), DB: testDB(t)}
	handle := verifiedSession(t, issuer.Sessions, 7)

	code, err := issuer.IssueCode(handle)
	require.NoError(t, err)
	again, err := issuer.IssueCode(handle)
	require.NoError(t, err)
	require.Equal(t, code, again)
}

func TestIssueCodeMintsFreshAfterExpiry(t *testing.T) {
	issuer := &CodeIssuer{Sessions: NewSessionStore(), DB: testDB(t)}
	handle := verifiedSession(t, issuer.Sessions, 7)

	code, err := issuer.IssueCode(handle)
	require.NoError(t, err)

	// age the stored record past its validity window
	require.NoError(t, issuer.DB.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(model.BucketCode))
		var record model.AuthorizationCode
		require.NoError(t, jsoniter.Unmarshal(bkt.Get([]byte(code)), &record))
		record.IssuedAt = time.Now().Add(-model.CodeExpire - time.Minute)
		b, err := jsoniter.Marshal(&record)
		require.NoError(t, err)
		return bkt.Put([]byte(code), b)
	}))

	fresh, err := issuer.IssueCode(handle)
	require.NoError(t, err)
	require.NotEqual(t, code, fresh)
}

func TestRevokeIdentity(t *testing.T) {
	issuer := &CodeIssuer{Sessions: NewSessionStore(), DB: testDB(t)}
	handle := verifiedSession(t, issuer.Sessions, 7)

	code, err := issuer.IssueCode(handle)
	require.NoError(t, err)

	require.NoError(t, issuer.RevokeIdentity(7))
	require.NoError(t, issuer.DB.View(func(tx *bolt.Tx) error {
		require.Nil(t, tx.Bucket([]byte(model.BucketCode)).Get([]byte(code)))
		require.Nil(t, tx.Bucket([]byte(model.BucketIdentity)).Get(model.IdentityRef(7).Bytes()))
		return nil
	}))

	require.ErrorIs(t, issuer.RevokeIdentity(7), model.InvalidGrantErr)
}
