// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trie indexes domain and domain-space records by reversed name.
//
// Reversing a dotted name turns every ancestor domain space into a prefix of
// the name, so "bank.fin" is stored as "nif.knab" next to "nif". Stores are
// immutable: writes return a new Store and leave the receiver untouched, so
// a Store may be shared between goroutines without locking.
package trie

import (
	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/luxfi/xchain"
)

type Store[V any] struct {
	tree *iradix.Tree
}

func New[V any]() *Store[V] {
	return &Store[V]{tree: iradix.New()}
}

func key(name string) []byte {
	return []byte(xchain.ReverseName(name))
}

func name(k []byte) string {
	return xchain.ReverseName(string(k))
}

// Get returns the record stored for name. A miss is reported by ok, never
// by an error.
func (s *Store[V]) Get(name string) (v V, ok bool) {
	raw, ok := s.tree.Get(key(name))
	if !ok {
		return v, false
	}
	return raw.(V), true
}

func (s *Store[V]) Has(name string) bool {
	_, ok := s.tree.Get(key(name))
	return ok
}

// Insert returns a store holding v under name. An existing record is replaced.
func (s *Store[V]) Insert(name string, v V) *Store[V] {
	tree, _, _ := s.tree.Insert(key(name), v)
	return &Store[V]{tree: tree}
}

func (s *Store[V]) Delete(name string) *Store[V] {
	tree, _, ok := s.tree.Delete(key(name))
	if !ok {
		return s
	}
	return &Store[V]{tree: tree}
}

func (s *Store[V]) Len() int {
	return s.tree.Len()
}

// Merge returns a store holding the records of both stores. Records of other
// win on collision.
func (s *Store[V]) Merge(other *Store[V]) *Store[V] {
	if other == nil || other.Len() == 0 {
		return s
	}
	txn := s.tree.Txn()
	other.tree.Root().Walk(func(k []byte, v interface{}) bool {
		txn.Insert(k, v)
		return false
	})
	return &Store[V]{tree: txn.Commit()}
}

// Walk visits every record in reversed-name order until fn returns false.
func (s *Store[V]) Walk(fn func(name string, v V) bool) {
	s.tree.Root().Walk(func(k []byte, v interface{}) bool {
		return !fn(name(k), v.(V))
	})
}

// ClosestAncestor returns the deepest stored domain space that is a proper
// ancestor of name. ROOT, when stored, is the ancestor of last resort.
func (s *Store[V]) ClosestAncestor(n string) (string, V, bool) {
	var (
		found     bool
		bestName  string
		bestValue V
	)
	k := key(n)
	s.tree.Root().WalkPath(k, func(path []byte, v interface{}) bool {
		if len(path) < len(k) && k[len(path)] == '.' {
			found, bestName, bestValue = true, name(path), v.(V)
		}
		return false
	})
	if found {
		return bestName, bestValue, true
	}
	if n != xchain.RootDomainSpace {
		if v, ok := s.Get(xchain.RootDomainSpace); ok {
			return xchain.RootDomainSpace, v, true
		}
	}
	var zero V
	return "", zero, false
}

// Names lists every stored name in reversed-name order.
func (s *Store[V]) Names() []string {
	out := make([]string, 0, s.Len())
	s.Walk(func(n string, _ V) bool {
		out = append(out, n)
		return true
	})
	return out
}
