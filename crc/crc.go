// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc implements the 16 bit CRC-CCITT checksum (polynomial 0x1021,
// initial value 0xffff) Quake tools stamp their files with.
package crc

import "hash"

const (
	ccittFalse = 0x1021
	cRCInitial = 0xffff
)

// Size of a checksum in bytes.
const Size = 2

type table [256]uint16

// 16bit CRC used by XMODEM
var ccittFalseTable = makeTable(ccittFalse)

func makeTable(poly uint16) *table {
	t := &table{}
	width := uint16(16)
	for i := uint16(0); i < 256; i++ {
		crc := i << (width - 8)
		for j := 0; j < 8; j++ {
			if crc&(1<<(width-1)) != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

func update(crc uint16, p []byte) uint16 {
	for _, v := range p {
		crc = ccittFalseTable[byte(crc>>8)^v] ^ (crc << 8)
	}
	return crc
}

// Digest is a running checksum. The zero value is not ready for use, call
// New.
type Digest struct {
	crc uint16
}

var _ hash.Hash = (*Digest)(nil)

func New() *Digest {
	return &Digest{crc: cRCInitial}
}

func (d *Digest) Write(p []byte) (int, error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

func (d *Digest) Sum16() uint16 {
	return d.crc
}

// Sum appends the checksum in big endian order.
func (d *Digest) Sum(b []byte) []byte {
	return append(b, byte(d.crc>>8), byte(d.crc))
}

func (d *Digest) Reset() {
	d.crc = cRCInitial
}

func (d *Digest) Size() int {
	return Size
}

func (d *Digest) BlockSize() int {
	return 1
}

// Checksum returns the checksum of p.
func Checksum(p []byte) uint16 {
	return update(cRCInitial, p)
}
