package db

import (
	"log"
	"path"

	"github.com/boltdb/bolt"
)

var db *bolt.DB

// InitDB opens the durable code store under confDir. It must be called before
// any service touches the store.
func InitDB(confDir string) {
	var err error
	db, err = bolt.Open(path.Join(confDir, "bolt.db"), 0600, nil)
	if err != nil {
		log.Fatal(err)
	}
}

func DB() *bolt.DB {
	return db
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	return db.Close()
}
