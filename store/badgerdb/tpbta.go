// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package badgerdb

import (
	"encoding/binary"
	"errors"

	"go.uber.org/zap"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/tpbta"
)

func tpbtaDomainPrefix(senderDomain string) []byte {
	return append(key(keyTpBTA, senderDomain), 0)
}

func tpbtaLanePrefix(lane xchain.CrossChainLane) []byte {
	return append(append(tpbtaDomainPrefix(lane.SenderDomain), lane.Key()...), 0)
}

func tpbtaKey(lane xchain.CrossChainLane, version uint32) []byte {
	return binary.BigEndian.AppendUint32(tpbtaLanePrefix(lane), version)
}

func (s *Store) Put(t *tpbta.TpBTA) error {
	if err := t.Lane.Validate(); err != nil {
		return err
	}
	if err := s.set(tpbtaKey(t.Lane, t.Version), t.Encode()); err != nil {
		return err
	}
	s.log.Debug("Stored tpbta", zap.Stringer("tpbta", t))
	return nil
}

func (s *Store) Has(lane xchain.CrossChainLane, version uint32) (bool, error) {
	_, err := s.get(tpbtaKey(lane, version))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Versions(lane xchain.CrossChainLane) ([]*tpbta.TpBTA, error) {
	return s.scanTpBTAs(tpbtaLanePrefix(lane))
}

func (s *Store) ListByDomain(senderDomain string) ([]*tpbta.TpBTA, error) {
	return s.scanTpBTAs(tpbtaDomainPrefix(senderDomain))
}

func (s *Store) scanTpBTAs(prefix []byte) ([]*tpbta.TpBTA, error) {
	values, err := s.scan(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*tpbta.TpBTA, 0, len(values))
	for _, v := range values {
		t, err := tpbta.Decode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
