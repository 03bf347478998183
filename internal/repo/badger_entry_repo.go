package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "guestbook/internal/domain"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	entryKeyPrefix = "entry:"
	entrySeqKey    = "seq:entry"
	seqBandwidth   = 100
)

// BadgerEntryRepo implements EntryRepo on an embedded BadgerDB.
// Keys are "entry:{id padded to 19 digits}" so a prefix scan yields creation order.
type BadgerEntryRepo struct {
	db  *badger.DB
	seq *badger.Sequence
}

type badgerEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBadgerEntryRepo returns a repo backed by db. Call Close to release the id sequence.
func NewBadgerEntryRepo(db *badger.DB) (*BadgerEntryRepo, error) {
	seq, err := db.GetSequence([]byte(entrySeqKey), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("badger sequence: %w", err)
	}
	return &BadgerEntryRepo{db: db, seq: seq}, nil
}

func entryKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", entryKeyPrefix, id))
}

func (r *BadgerEntryRepo) Create(ctx context.Context, e dom.Entry) (dom.Entry, error) {
	if err := ctx.Err(); err != nil {
		return dom.Entry{}, err
	}
	n, err := r.seq.Next()
	if err != nil {
		return dom.Entry{}, fmt.Errorf("badger next id: %w", err)
	}
	// Sequences start at 0; ids start at 1 like BIGSERIAL.
	out := dom.Entry{
		ID:        int64(n) + 1,
		Name:      e.Name,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(toBadgerEntry(out))
	if err != nil {
		return dom.Entry{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(out.ID), b)
	})
	if err != nil {
		return dom.Entry{}, err
	}
	return out, nil
}

func (r *BadgerEntryRepo) List(ctx context.Context) ([]dom.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list := []dom.Entry{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(entryKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var be badgerEntry
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &be)
			})
			if err != nil {
				return err
			}
			list = append(list, fromBadgerEntry(be))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *BadgerEntryRepo) Update(ctx context.Context, id int64, name, message string) (dom.Entry, error) {
	if err := ctx.Err(); err != nil {
		return dom.Entry{}, err
	}
	var out dom.Entry
	err := r.db.Update(func(txn *badger.Txn) error {
		be, err := getBadgerEntry(txn, id)
		if err != nil {
			return err
		}
		be.Name = name
		be.Message = message
		b, err := json.Marshal(be)
		if err != nil {
			return err
		}
		if err := txn.Set(entryKey(id), b); err != nil {
			return err
		}
		out = fromBadgerEntry(be)
		return nil
	})
	if err != nil {
		return dom.Entry{}, err
	}
	return out, nil
}

func (r *BadgerEntryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := getBadgerEntry(txn, id); err != nil {
			return err
		}
		return txn.Delete(entryKey(id))
	})
}

func (r *BadgerEntryRepo) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

// Close releases the leased id range. It does not close the database.
func (r *BadgerEntryRepo) Close() error {
	return r.seq.Release()
}

func getBadgerEntry(txn *badger.Txn, id int64) (badgerEntry, error) {
	item, err := txn.Get(entryKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return badgerEntry{}, ErrNotFound
	}
	if err != nil {
		return badgerEntry{}, err
	}
	var be badgerEntry
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &be)
	})
	return be, err
}

func toBadgerEntry(e dom.Entry) badgerEntry {
	return badgerEntry{ID: e.ID, Name: e.Name, Message: e.Message, CreatedAt: e.CreatedAt}
}

func fromBadgerEntry(be badgerEntry) dom.Entry {
	return dom.Entry{ID: be.ID, Name: be.Name, Message: be.Message, CreatedAt: be.CreatedAt}
}
