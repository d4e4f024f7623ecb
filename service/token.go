package service

import (
	"context"
	"crypto/subtle"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/platform"
)

// TokenExchanger authenticates the relying party and redeems authorization
// codes for identity assertions.
type TokenExchanger struct {
	DB       *bolt.DB
	Platform platform.Platform

	ClientID     string
	ClientSecret string

	// Announce is called after every successful exchange, e.g. by the
	// operator bot. Optional.
	Announce func(identity model.Identity)
}

type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Assertion is the token-exchange response. The bearer token is a one-shot
// identity carrier: the relying party's back channel reads it immediately, so
// ExpiresIn is effectively immediate.
type Assertion struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	Info        UserInfo `json:"info"`
}

// Exchange redeems code for an identity assertion. Client credentials are
// checked in constant time before any store access; the code lookup and its
// consumption are one atomic store transaction, so of two concurrent
// redemptions of the same code exactly one wins.
func (te *TokenExchanger) Exchange(ctx context.Context, clientID, clientSecret, code string) (*Assertion, error) {
	idOK := subtle.ConstantTimeCompare([]byte(clientID), []byte(te.ClientID))
	secretOK := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(te.ClientSecret))
	if idOK&secretOK != 1 {
		return nil, model.ClientMismatchErr
	}
	var identity model.IdentityRef
	if err := te.DB.Update(func(tx *bolt.Tx) error {
		codes := tx.Bucket([]byte(model.BucketCode))
		if codes == nil {
			return model.InvalidGrantErr
		}
		b := codes.Get([]byte(code))
		if b == nil {
			return model.InvalidGrantErr
		}
		var record model.AuthorizationCode
		if err := jsoniter.Unmarshal(b, &record); err != nil {
			log.Warn("undecodable record for presented code: %v", err)
			return model.InvalidGrantErr
		}
		if record.Expired() {
			return model.InvalidGrantErr
		}
		// Consumption is terminal, so both directions are deleted within
		// the same transaction that validated the code.
		if err := codes.Delete([]byte(code)); err != nil {
			return err
		}
		if identities := tx.Bucket([]byte(model.BucketIdentity)); identities != nil {
			if err := identities.Delete(record.Identity.Bytes()); err != nil {
				return err
			}
		}
		identity = record.Identity
		return nil
	}); err != nil {
		return nil, err
	}
	resolved, err := te.Platform.ResolveIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	log.Info("exchanged code for identity %v", identity)
	if te.Announce != nil {
		te.Announce(resolved)
	}
	return &Assertion{
		AccessToken: uuid.New().String(),
		TokenType:   "bearer",
		ExpiresIn:   1,
		Info: UserInfo{
			Username: resolved.Name,
			Email:    resolved.Addr,
		},
	}, nil
}
