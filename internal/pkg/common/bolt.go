package common

import (
	"encoding/binary"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/samber/do/v2"
	bolt "go.etcd.io/bbolt"
)

const (
	LedgerMatchesBucket       = "ledger:matches"
	LedgerResultsBucket       = "ledger:results"
	LedgerResultIndexBucket   = "ledger:result-index"
	LedgerSubscriptionsBucket = "ledger:subscriptions"
	LedgerRegistryBucket      = "ledger:registry"
	LedgerProvidersBucket     = "ledger:providers"
	LedgerConsumersBucket     = "ledger:consumers"

	BankBalancesBucket = "bank:balances"
)

type DatabaseService struct {
	DB *bolt.DB
}

func NewDatabaseService(i do.Injector) (*DatabaseService, error) {
	dataDir := do.MustInvokeNamed[string](i, "data-dir")

	return OpenDatabaseService(dataDir)
}

func OpenDatabaseService(dataDir string) (*DatabaseService, error) {
	err := os.MkdirAll(dataDir, 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create database path: %w", err)
	}

	dbPath := path.Join(dataDir, "shinpan.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{
			LedgerMatchesBucket,
			LedgerResultsBucket,
			LedgerResultIndexBucket,
			LedgerSubscriptionsBucket,
			LedgerRegistryBucket,
			LedgerProvidersBucket,
			LedgerConsumersBucket,
			BankBalancesBucket,
		} {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database buckets: %w", err)
	}

	return &DatabaseService{
		DB: db,
	}, nil
}

func (s *DatabaseService) Shutdown() error {
	//nolint:wrapcheck
	return s.DB.Close()
}

func Uint64ToBytes(u uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, u)

	return buf
}

func BytesToUint64(b []byte, _default uint64) uint64 {
	if len(b) == 0 {
		return _default
	}

	return binary.LittleEndian.Uint64(b)
}
