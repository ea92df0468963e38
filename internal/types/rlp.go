package types

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// Wire encoding for the identity types. RLP gives the length-prefixed
// recursive scheme the frontier format requires, and is deterministic:
// identical logical values encode to byte-identical output, so frontier
// messages are comparable by hash.

// EncodeRLP encodes the reference as [seq, hash].
func (r BlockRef) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{uint64(r.Seq), r.Hash[:]})
}

// DecodeRLP decodes a [seq, hash] pair, rejecting hashes of the wrong
// width.
func (r *BlockRef) DecodeRLP(s *rlp.Stream) error {
	var dec struct {
		Seq  uint64
		Hash []byte
	}
	if err := s.Decode(&dec); err != nil {
		return err
	}
	h, err := ShortHashFromBytes(dec.Hash)
	if err != nil {
		return fmt.Errorf("block ref hash: %w", err)
	}
	r.Seq = SeqNo(dec.Seq)
	r.Hash = h
	return nil
}

// EncodeRLP encodes the range as [lo, hi].
func (r Range) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{uint64(r.Lo), uint64(r.Hi)})
}

// DecodeRLP decodes a [lo, hi] pair. Canonical-form checks happen at
// the enclosing message level, where the whole sequence is visible.
func (r *Range) DecodeRLP(s *rlp.Stream) error {
	var dec struct {
		Lo uint64
		Hi uint64
	}
	if err := s.Decode(&dec); err != nil {
		return err
	}
	r.Lo = SeqNo(dec.Lo)
	r.Hi = SeqNo(dec.Hi)
	return nil
}
