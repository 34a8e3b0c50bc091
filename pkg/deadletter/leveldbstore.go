package deadletter

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore is an embedded append-only dead-letter store. Letters are keyed by a
// monotonically increasing counter, so iteration order is insertion order.
type LevelDBStore struct {
	db *leveldb.DB
}

const (
	keyDeadLetterCounter = "id_counter_dead_letters"
	keyPrefixDeadLetter  = "dead_letter_"
)

// Enforce interface constraints at compile time
var _ Store = (*LevelDBStore)(nil)

func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDBStore{
		db: db,
	}, nil
}

func (s *LevelDBStore) Record(ctx context.Context, letter DeadLetter) error {
	encoded, err := json.Marshal(letter)
	if err != nil {
		return err
	}

	return s.withIncrementingId(func(tx *leveldb.Transaction, id uint64) error {
		key := append(bz(keyPrefixDeadLetter), uint64ToBytes(id)...)
		return tx.Put(key, encoded, nil)
	})
}

func (s *LevelDBStore) List(ctx context.Context, limit int) ([]DeadLetter, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	it := s.db.NewIterator(util.BytesPrefix(bz(keyPrefixDeadLetter)), nil)
	defer it.Release()

	var letters []DeadLetter
	for it.Next() && len(letters) < limit {
		value := make([]byte, len(it.Value()))
		copy(value, it.Value())

		var letter DeadLetter
		if err := json.Unmarshal(value, &letter); err != nil {
			return nil, fmt.Errorf("corrupt dead letter at key %x: %w", it.Key(), err)
		}

		letters = append(letters, letter)
	}

	return letters, it.Error()
}

func (s *LevelDBStore) Count(ctx context.Context) (int, error) {
	it := s.db.NewIterator(util.BytesPrefix(bz(keyPrefixDeadLetter)), nil)
	defer it.Release()

	count := 0
	for it.Next() {
		count++
	}

	return count, it.Error()
}

func (s *LevelDBStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// withIncrementingId allocates the next counter value and runs f inside the same
// transaction, so concurrent writers never reuse an id.
func (s *LevelDBStore) withIncrementingId(f func(tx *leveldb.Transaction, id uint64) error) error {
	tx, err := s.db.OpenTransaction()
	if err != nil {
		return err
	}
	defer tx.Discard()

	var id uint64
	counterBytes, err := tx.Get(bz(keyDeadLetterCounter), nil)
	if err == nil {
		if len(counterBytes) != 8 {
			return fmt.Errorf("invalid counter length: %d", len(counterBytes))
		}

		id = binary.BigEndian.Uint64(counterBytes)
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return err
	}

	id++

	if err := tx.Put(bz(keyDeadLetterCounter), uint64ToBytes(id), nil); err != nil {
		return err
	}

	if err := f(tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

func bz(s string) []byte {
	return []byte(s)
}

// uint64ToBytes encodes big-endian so lexicographic key order matches numeric order.
func uint64ToBytes(v uint64) []byte {
	encoded := make([]byte, 8)
	binary.BigEndian.PutUint64(encoded, v)
	return encoded
}
