package bill

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "invoices"

// DB defines the interface for database operations
type DB interface {
	// SaveBill inserts or replaces a bill
	SaveBill(bill *Bill) error

	// GetBill retrieves a bill by ID
	GetBill(id string) (*Bill, error)

	// ListBills returns all bills, newest first
	ListBills() ([]*Bill, error)

	// DeleteBill removes a bill
	DeleteBill(id string) error

	// ClearBills removes every bill
	ClearBills() error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveBill saves a bill to the database
func (b *BoltDB) SaveBill(bill *Bill) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(bill)
		if err != nil {
			return fmt.Errorf("marshaling bill: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(bill.ID), data)
	})
}

// GetBill retrieves a bill by ID
func (b *BoltDB) GetBill(id string) (*Bill, error) {
	var bill *Bill
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("bill %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills returns all bills ordered by creation time, newest first
func (b *BoltDB) ListBills() ([]*Bill, error) {
	bills := make([]*Bill, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var bill Bill
			if err := json.Unmarshal(v, &bill); err != nil {
				return fmt.Errorf("unmarshaling bill %s: %w", k, err)
			}
			bills = append(bills, &bill)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(bills)
	return bills, nil
}

func sortNewestFirst(bills []*Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		if bills[i].CreatedAt.Equal(bills[j].CreatedAt) {
			return bills[i].ID > bills[j].ID
		}
		return bills[i].CreatedAt.After(bills[j].CreatedAt)
	})
}

// DeleteBill removes a bill from the database
func (b *BoltDB) DeleteBill(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("bill %s: %w", id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

// ClearBills drops and recreates the bucket
func (b *BoltDB) ClearBills() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return fmt.Errorf("deleting bucket: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(bucketName)); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return nil
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
