// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tlv

import "encoding/binary"

func Bytes(tag uint16, v []byte) Item {
	return Item{Tag: tag, Value: v}
}

func String(tag uint16, v string) Item {
	return Item{Tag: tag, Value: []byte(v)}
}

func Uint8(tag uint16, v uint8) Item {
	return Item{Tag: tag, Value: []byte{v}}
}

func Uint16(tag uint16, v uint16) Item {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return Item{Tag: tag, Value: b}
}

func Uint32(tag uint16, v uint32) Item {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return Item{Tag: tag, Value: b}
}

func Uint64(tag uint16, v uint64) Item {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return Item{Tag: tag, Value: b}
}
