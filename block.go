package coapcodec

import (
	cerr "github.com/coalalib/coapcodec/errors"
)

// Block is the decoded form of a Block1 or Block2 option value
// (RFC 7959): 0-based block index, more-blocks flag and block size in
// bytes. On the wire the value is a uint of 0..3 bytes (a zero value
// takes no bytes) laid out NUM / M / SZX, most significant first.
type Block struct {
	BlockNumber int
	MoreBlocks  bool
	BlockSize   int
}

// NUM is at most 20 bits wide in the 3-byte encoding.
const maxBlockNumber = 1<<20 - 1

func NewBlock(moreBlocks bool, num, size int) *Block {
	return &Block{
		BlockNumber: num,
		BlockSize:   size,
		MoreBlocks:  moreBlocks,
	}
}

// NewBlockFromInt unpacks a Block option value. SZX 7 is reserved.
func NewBlockFromInt(blockValue uint32) (*Block, error) {
	szx := int(blockValue & 7)
	if szx == 7 {
		return nil, cerr.BlockSizeReserved
	}

	return &Block{
		BlockNumber: int(blockValue >> 4),
		MoreBlocks:  blockValue&8 != 0,
		BlockSize:   16 << szx,
	}, nil
}

// ToInt packs the block back into its option value form.
func (block *Block) ToInt() (uint32, error) {
	szx, err := computeSZX(block.BlockSize)
	if err != nil {
		return 0, err
	}
	if block.BlockNumber < 0 || block.BlockNumber > maxBlockNumber {
		return 0, cerr.BlockNumberOutOfRange
	}

	value := uint32(block.BlockNumber) << 4
	if block.MoreBlocks {
		value |= 8
	}
	value |= uint32(szx)

	return value, nil
}

/*
 * Encodes a block size into a 3-bit SZX value as specified by
 * RFC 7959, Section 2.2:
 *
 * 16 bytes = 2^4 --> 0
 * ...
 * 1024 bytes = 2^10 -> 6
 */
func computeSZX(blockSize int) (int, error) {
	for szx := 0; szx <= 6; szx++ {
		if blockSize == 16<<szx {
			return szx, nil
		}
	}
	return 0, cerr.BlockSizeReserved
}
