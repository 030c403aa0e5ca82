// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tlv implements the tagged-length-value packet used by proof
// envelopes, certificates and trust anchors.
//
// A packet is a 6 byte header {version uint16, bodyLen uint32} followed by
// bodyLen bytes of items, each {tag uint16, len uint32, value}. All integers
// are little-endian.
package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// Version is written into the header of every packet built by New.
	Version uint16 = 1

	headerLen = 6
	itemHead  = 6
)

var (
	ErrMalformed    = errors.New("malformed tlv packet")
	ErrMissingTag   = errors.New("missing tlv tag")
	ErrDuplicateTag = errors.New("duplicate tlv tag")
	ErrValueWidth   = errors.New("unexpected tlv value width")
)

type Item struct {
	Tag   uint16
	Value []byte
}

// Packet is an ordered list of items. Decoded packets never hold two items
// with the same tag.
type Packet struct {
	Version uint16
	Items   []Item
}

func New(items ...Item) *Packet {
	return &Packet{Version: Version, Items: items}
}

// Add appends an item. A later Add with an existing tag replaces the value.
func (p *Packet) Add(item Item) *Packet {
	for i := range p.Items {
		if p.Items[i].Tag == item.Tag {
			p.Items[i].Value = item.Value
			return p
		}
	}
	p.Items = append(p.Items, item)
	return p
}

func (p *Packet) Encode() []byte {
	size := headerLen
	for _, it := range p.Items {
		size += itemHead + len(it.Value)
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint16(buf[0:2], p.Version)
	binary.LittleEndian.PutUint32(buf[2:6], uint32(size-headerLen))
	off := headerLen
	for _, it := range p.Items {
		binary.LittleEndian.PutUint16(buf[off:], it.Tag)
		binary.LittleEndian.PutUint32(buf[off+2:], uint32(len(it.Value)))
		off += itemHead
		off += copy(buf[off:], it.Value)
	}
	return buf
}

// Decode parses a packet. Truncated items, trailing bytes, body length
// mismatches and repeated tags are rejected.
func Decode(data []byte) (*Packet, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: header too short: %d", ErrMalformed, len(data))
	}
	p := &Packet{Version: binary.LittleEndian.Uint16(data[0:2])}
	bodyLen := binary.LittleEndian.Uint32(data[2:6])
	if uint64(bodyLen) != uint64(len(data)-headerLen) {
		return nil, fmt.Errorf("%w: body length %d, have %d", ErrMalformed, bodyLen, len(data)-headerLen)
	}
	body := data[headerLen:]
	seen := make(map[uint16]struct{})
	for len(body) > 0 {
		if len(body) < itemHead {
			return nil, fmt.Errorf("%w: item header too short: %d", ErrMalformed, len(body))
		}
		tag := binary.LittleEndian.Uint16(body[0:2])
		n := binary.LittleEndian.Uint32(body[2:6])
		if n > math.MaxInt32 || uint64(n) > uint64(len(body)-itemHead) {
			return nil, fmt.Errorf("%w: tag %d declares %d bytes, have %d", ErrMalformed, tag, n, len(body)-itemHead)
		}
		if _, dup := seen[tag]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTag, tag)
		}
		seen[tag] = struct{}{}
		value := make([]byte, n)
		copy(value, body[itemHead:itemHead+int(n)])
		p.Items = append(p.Items, Item{Tag: tag, Value: value})
		body = body[itemHead+int(n):]
	}
	return p, nil
}

func (p *Packet) Get(tag uint16) ([]byte, bool) {
	for _, it := range p.Items {
		if it.Tag == tag {
			return it.Value, true
		}
	}
	return nil, false
}

// Require fails with ErrMissingTag naming every absent tag.
func (p *Packet) Require(tags ...uint16) error {
	var missing []int
	for _, tag := range tags {
		if _, ok := p.Get(tag); !ok {
			missing = append(missing, int(tag))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Ints(missing)
	return fmt.Errorf("%w: %v", ErrMissingTag, missing)
}

func (p *Packet) MustGet(tag uint16) ([]byte, error) {
	v, ok := p.Get(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMissingTag, tag)
	}
	return v, nil
}

func (p *Packet) GetString(tag uint16) (string, error) {
	v, err := p.MustGet(tag)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (p *Packet) GetUint8(tag uint16) (uint8, error) {
	v, err := p.fixed(tag, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (p *Packet) GetUint16(tag uint16) (uint16, error) {
	v, err := p.fixed(tag, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v), nil
}

func (p *Packet) GetUint32(tag uint16) (uint32, error) {
	v, err := p.fixed(tag, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

func (p *Packet) GetUint64(tag uint16) (uint64, error) {
	v, err := p.fixed(tag, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v), nil
}

func (p *Packet) fixed(tag uint16, width int) ([]byte, error) {
	v, err := p.MustGet(tag)
	if err != nil {
		return nil, err
	}
	if len(v) != width {
		return nil, fmt.Errorf("%w: tag %d has %d bytes, want %d", ErrValueWidth, tag, len(v), width)
	}
	return v, nil
}
