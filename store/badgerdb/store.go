// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package badgerdb persists certificates and TpBTAs in a badger database.
package badgerdb

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/luxfi/xchain/cache"
	"github.com/luxfi/xchain/cert"
	"github.com/luxfi/xchain/tpbta"
	"github.com/luxfi/xchain/trustsync"
)

// Key prefixes. Every key is a prefix byte followed by the record's name.
const (
	keyDomainCert      = byte(1) // domain -> certificate
	keyDomainSpaceCert = byte(2) // domain space -> certificate
	keyTpBTA           = byte(3) // sender domain 0x00 lane key 0x00 version -> tpbta
)

const decodedCertCacheSize = 1024

// ErrNotFound is trustsync.ErrNotFound so the store can serve as a
// certificate source directly.
var ErrNotFound = trustsync.ErrNotFound

var (
	_ trustsync.CertificateSource = (*Store)(nil)
	_ tpbta.Store                 = (*Store)(nil)
)

type Store struct {
	db    *badger.DB
	log   *zap.Logger
	certs *cache.FIFOCache[string, *cert.Certificate]
}

// Open opens the database at path. With inMemory set nothing is written to
// disk and path is ignored.
func Open(path string, inMemory bool, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{log.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	log.Info("Opened certificate store", zap.String("path", path), zap.Bool("inMemory", inMemory))
	return &Store{
		db:    db,
		log:   log,
		certs: cache.NewFIFOCache[string, *cert.Certificate](decodedCertCacheSize),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *Store) set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// scan returns the values of every key starting with prefix, in key order.
func (s *Store) scan(prefix []byte) ([][]byte, error) {
	var values [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		return nil
	})
	return values, err
}

func key(prefix byte, name string) []byte {
	k := make([]byte, 0, 1+len(name))
	k = append(k, prefix)
	return append(k, name...)
}

// badgerLogger routes badger's own logging into zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
