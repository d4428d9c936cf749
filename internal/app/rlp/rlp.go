// Package rlp implements the recursive-length-prefix encoding used for
// state trie nodes, as defined in appendix B of the Ethereum yellow paper.
//
// An item is either a string of bytes or a list of items. The recursion in
// the second case is what lets node structures of arbitrary depth round-trip
// through a flat byte stream.
package rlp

import (
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed rlp")

// maxListDepth bounds list nesting during decoding. State trie nodes nest at
// most a few dozen levels; unbounded recursion on crafted input would exhaust
// the stack.
const maxListDepth = 1024

// Item is anything this package can encode.
type Item interface {
	// write appends the encoding of this item to the writer.
	write(writer) writer

	// encodedLength computes the encoded size of this item in bytes.
	encodedLength() int
}

// String is the atomic ground type: a possibly empty string of bytes.
type String struct {
	Str []byte
}

// List composes items into a new item.
type List struct {
	Items []Item
}

// Encode serializes an item structure.
func Encode(item Item) []byte {
	return item.write(writer(make([]byte, 0, 256)))
}

// Decode parses one item and requires it to span the whole input.
func Decode(data []byte) (Item, error) {
	item, consumed, err := decode(data, 0)
	if err != nil {
		return nil, err
	}
	if consumed != uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, uint64(len(data))-consumed)
	}
	return item, nil
}

// decode parses the item starting at the head of the stream and reports how
// many bytes it consumed, so list decoding can walk concatenated items.
func decode(data []byte, depth int) (Item, uint64, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	prefix := data[0]
	switch {
	case prefix < 0x80: // single byte, encodes itself
		return String{Str: data[0:1]}, 1, nil

	case prefix < 0xb8: // short string
		length := uint64(prefix - 0x80)
		if uint64(len(data)) < 1+length {
			return nil, 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformed, 1+length, len(data))
		}
		return String{Str: data[1 : 1+length]}, 1 + length, nil

	case prefix < 0xc0: // long string
		sizeBytes := uint64(prefix - 0xb7)
		length, err := readSize(data[1:], sizeBytes)
		if err != nil {
			return nil, 0, err
		}
		offset := 1 + sizeBytes
		// Checked without summing offset+length, which can wrap.
		if offset > uint64(len(data)) || length > uint64(len(data))-offset {
			return nil, 0, fmt.Errorf("%w: declared %d byte payload, got %d bytes", ErrMalformed, length, len(data))
		}
		return String{Str: data[offset : offset+length]}, offset + length, nil

	case prefix < 0xf8: // short list
		if depth >= maxListDepth {
			return nil, 0, fmt.Errorf("%w: list nesting deeper than %d", ErrMalformed, maxListDepth)
		}
		length := uint64(prefix - 0xc0)
		if uint64(len(data)) < 1+length {
			return nil, 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformed, 1+length, len(data))
		}
		items, err := decodeList(data[1 : 1+length], depth+1)
		if err != nil {
			return nil, 0, err
		}
		return List{Items: items}, 1 + length, nil

	default: // long list
		if depth >= maxListDepth {
			return nil, 0, fmt.Errorf("%w: list nesting deeper than %d", ErrMalformed, maxListDepth)
		}
		sizeBytes := uint64(prefix - 0xf7)
		length, err := readSize(data[1:], sizeBytes)
		if err != nil {
			return nil, 0, err
		}
		offset := 1 + sizeBytes
		// Checked without summing offset+length, which can wrap.
		if offset > uint64(len(data)) || length > uint64(len(data))-offset {
			return nil, 0, fmt.Errorf("%w: declared %d byte payload, got %d bytes", ErrMalformed, length, len(data))
		}
		items, err := decodeList(data[offset : offset+length], depth+1)
		if err != nil {
			return nil, 0, err
		}
		return List{Items: items}, offset + length, nil
	}
}

// decodeList consumes concatenated items until the payload is exhausted. The
// caller has already cut away the list prefix.
func decodeList(data []byte, depth int) ([]Item, error) {
	items := make([]Item, 0, 17)
	for len(data) > 0 {
		item, consumed, err := decode(data, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		data = data[consumed:]
	}
	return items, nil
}

// writer appends encoded content to a pre-allocated buffer.
type writer []byte

func (w writer) Write(data []byte) writer {
	return append(w, data...)
}

func (w writer) Put(c byte) writer {
	return append(w, c)
}

func (s String) write(writer writer) writer {
	l := len(s.Str)
	// A single byte below 0x80 is its own encoding.
	if l == 1 && s.Str[0] < 0x80 {
		return writer.Write(s.Str)
	}
	writer = encodeLength(l, 0x80, writer)
	return writer.Write(s.Str)
}

func (s String) encodedLength() int {
	l := len(s.Str)
	if l == 1 && s.Str[0] < 0x80 {
		return 1
	}
	return l + lengthPrefixSize(l)
}

func (l List) write(writer writer) writer {
	length := 0
	for i := 0; i < len(l.Items); i++ {
		length += l.Items[i].encodedLength()
	}
	writer = encodeLength(length, 0xc0, writer)
	for i := 0; i < len(l.Items); i++ {
		writer = l.Items[i].write(writer)
	}
	return writer
}

func (l List) encodedLength() int {
	sum := 0
	for _, item := range l.Items {
		sum += item.encodedLength()
	}
	return sum + lengthPrefixSize(sum)
}

// encodeLength writes the length prefix for strings (offset 0x80) and lists
// (offset 0xc0).
func encodeLength(length int, offset byte, writer writer) writer {
	if length < 56 {
		return writer.Put(offset + byte(length))
	}
	sizeBytes := numBytes(uint64(length))
	writer = writer.Put(offset + 55 + sizeBytes)
	for i := byte(0); i < sizeBytes; i++ {
		writer = writer.Put(byte(length >> (8 * (sizeBytes - i - 1))))
	}
	return writer
}

// numBytes computes the minimum big-endian width of the given value.
func numBytes(value uint64) byte {
	if value == 0 {
		return 0
	}
	for res := byte(1); ; res++ {
		if value >>= 8; value == 0 {
			return res
		}
	}
}

func lengthPrefixSize(length int) int {
	if length < 56 {
		return 1
	}
	return int(numBytes(uint64(length))) + 1
}

func readSize(data []byte, sizeBytes uint64) (uint64, error) {
	if uint64(len(data)) < sizeBytes {
		return 0, fmt.Errorf("%w: expected %d length bytes, got %d", ErrMalformed, sizeBytes, len(data))
	}
	var size uint64
	for i := uint64(0); i < sizeBytes; i++ {
		size = size<<8 | uint64(data[i])
	}
	return size, nil
}
