package main

import (
	"time"

	"github.com/boltdb/bolt"
	jsoniter "github.com/json-iterator/go"

	"github.com/deltachat-bot/deltachat-loginbot/db"
	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/service"
)

func GoBackgrounds(sessions *service.SessionStore) {
	// evict expired login sessions
	go sessions.SweepBackground(30 * time.Second)()

	// remove authorization codes past their validity window, together with
	// their reverse entries
	go ExpireCleanBackground(model.BucketCode, 1*time.Minute, func(tx *bolt.Tx, k, b []byte, now time.Time) (expired bool) {
		var record model.AuthorizationCode
		if err := jsoniter.Unmarshal(b, &record); err != nil {
			// invalid records are regarded as expired
			return true
		}
		if !now.After(record.IssuedAt.Add(model.CodeExpire)) {
			return false
		}
		if identities := tx.Bucket([]byte(model.BucketIdentity)); identities != nil {
			if string(identities.Get(record.Identity.Bytes())) == string(k) {
				if err := identities.Delete(record.Identity.Bytes()); err != nil {
					log.Warn("clean reverse entry of identity %v: %v", record.Identity, err)
				}
			}
		}
		return true
	})()
}

func ExpireCleanBackground(bucket string, cleanInterval time.Duration, f func(tx *bolt.Tx, k, b []byte, now time.Time) (expired bool)) func() {
	return func() {
		tick := time.Tick(cleanInterval)
		for now := range tick {
			if err := db.DB().Update(func(tx *bolt.Tx) error {
				bkt, err := tx.CreateBucketIfNotExists([]byte(bucket))
				if err != nil {
					return err
				}
				var listClean [][]byte
				if err = bkt.ForEach(func(k, b []byte) error {
					if f(tx, k, b, now) {
						listClean = append(listClean, k)
					}
					return nil
				}); err != nil {
					return err
				}
				for _, k := range listClean {
					if err = bkt.Delete(k); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				log.Warn("Clean bucket %v: %v", bucket, err)
			}
		}
	}
}
