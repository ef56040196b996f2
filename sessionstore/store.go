// Package sessionstore keeps reader sessions server-side in an in-memory
// badger database. The cookie carries only a signed opaque id; values expire
// after an idle TTL and never survive a process restart.
package sessionstore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const keyPrefix = "session:"

// Store implements sessions.Store.
type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options
	db      *badger.DB
	ttl     time.Duration
}

// New opens an in-memory store. ttl bounds how long an idle session is kept;
// keyPairs are passed to securecookie as in sessions.NewCookieStore.
func New(ttl time.Duration, keyPairs ...[]byte) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	return &Store{
		Codecs:  securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{Path: "/", MaxAge: 0},
		db:      db,
		ttl:     ttl,
	}, nil
}

// Close releases the underlying database. All sessions are lost.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the session cached in the request registry, loading it on
// first use.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session referenced by the request cookie, or a fresh one
// when the cookie is missing, forged or refers to an expired session.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.Codecs...); err != nil {
		return session, nil
	}
	found, err := s.load(name, id, session)
	if err != nil {
		return session, err
	}
	if found {
		session.ID = id
		session.IsNew = false
	}
	return session, nil
}

// Save persists the session values and writes the id cookie. A negative
// MaxAge deletes the session.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.erase(session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.save(session); err != nil {
		return err
	}
	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Renew drops the stored values behind session's current id so the next
// Save issues a new id. Values held in session are kept.
func (s *Store) Renew(session *sessions.Session) error {
	if session.ID == "" {
		return nil
	}
	if err := s.erase(session.ID); err != nil {
		return err
	}
	session.ID = ""
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *Store) save(session *sessions.Session) error {
	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(keyPrefix+session.ID), []byte(encoded))
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) load(name, id string, session *sessions.Session) (bool, error) {
	var data []byte
	key := []byte(keyPrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}
		if s.ttl <= 0 {
			return nil
		}
		// touching the entry restarts the idle TTL
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(s.ttl))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if err := securecookie.DecodeMulti(name, string(data), &session.Values, s.Codecs...); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *Store) erase(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
}
