package service

import (
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

// CodeIssuer mints single-use authorization codes for verified sessions and
// persists them in the durable code store.
type CodeIssuer struct {
	Sessions *SessionStore
	DB       *bolt.DB
}

// IssueCode returns the session's authorization code, minting one on first
// call. Reissue is idempotent: while the code is unconsumed and unexpired,
// retried redirects get the same code back.
func (ci *CodeIssuer) IssueCode(handle string) (code string, err error) {
	err = ci.Sessions.Update(handle, func(session *model.Session) error {
		if session.VerifiedIdentity == nil {
			return model.NotVerifiedErr
		}
		identity := *session.VerifiedIdentity
		return ci.DB.Update(func(tx *bolt.Tx) error {
			codes, err := tx.CreateBucketIfNotExists([]byte(model.BucketCode))
			if err != nil {
				return err
			}
			identities, err := tx.CreateBucketIfNotExists([]byte(model.BucketIdentity))
			if err != nil {
				return err
			}
			if existing := reusableCode(codes, identities, identity); existing != "" {
				code = existing
				return nil
			}
			code = strings.ReplaceAll(uuid.New().String(), "-", "")
			record := model.AuthorizationCode{
				Code:     code,
				Identity: identity,
				IssuedAt: time.Now(),
			}
			b, err := jsoniter.Marshal(&record)
			if err != nil {
				return err
			}
			// code -> record first: that direction is authoritative, the
			// reverse lookup only serves reissue and revocation.
			if err := codes.Put([]byte(code), b); err != nil {
				return err
			}
			if err := identities.Put(identity.Bytes(), []byte(code)); err != nil {
				return err
			}
			session.Progress = model.SessionCodeIssued
			log.Info("session %v: issued code for identity %v", session.ID, identity)
			return nil
		})
	})
	return code, err
}

// reusableCode returns the identity's outstanding code if it is still valid.
func reusableCode(codes, identities *bolt.Bucket, identity model.IdentityRef) string {
	existing := identities.Get(identity.Bytes())
	if existing == nil {
		return ""
	}
	b := codes.Get(existing)
	if b == nil {
		return ""
	}
	var record model.AuthorizationCode
	if err := jsoniter.Unmarshal(b, &record); err != nil {
		log.Warn("undecodable code record for identity %v: %v", identity, err)
		return ""
	}
	if record.Expired() {
		return ""
	}
	return string(existing)
}

// RevokeIdentity removes the identity's outstanding code from both store
// directions. Used by the operator bot.
func (ci *CodeIssuer) RevokeIdentity(identity model.IdentityRef) error {
	return ci.DB.Update(func(tx *bolt.Tx) error {
		identities := tx.Bucket([]byte(model.BucketIdentity))
		if identities == nil {
			return model.InvalidGrantErr
		}
		code := identities.Get(identity.Bytes())
		if code == nil {
			return model.InvalidGrantErr
		}
		if codes := tx.Bucket([]byte(model.BucketCode)); codes != nil {
			if err := codes.Delete(code); err != nil {
				return err
			}
		}
		if err := identities.Delete(identity.Bytes()); err != nil {
			return err
		}
		log.Info("revoked outstanding code of identity %v", identity)
		return nil
	})
}
