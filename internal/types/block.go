package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Block is the ingestion contract. The chain store consults exactly
// these fields of an incoming block; signing, payload, and key material
// live in outer layers.
type Block interface {
	// FullHash is the block's full cryptographic digest; the short
	// hash is derived from it.
	FullHash() []byte
	// Previous are the single-author parent links, indexed by
	// SequenceNumber in personal mode.
	Previous() Links
	// Links are the multi-parent community links, indexed by
	// CommunitySeqNum in community mode.
	Links() Links
	// SequenceNumber is the block's height in its author's personal
	// chain.
	SequenceNumber() SeqNo
	// CommunitySeqNum is the block's height in the community chain.
	CommunitySeqNum() SeqNo
}

// RawBlock is the default Block implementation, shaped for the JSONL
// replay format used by the CLI.
type RawBlock struct {
	Hash     HexBytes `json:"hash"`
	Prev     Links    `json:"previous"`
	ComLinks Links    `json:"links"`
	SeqNum   SeqNo    `json:"sequence_number"`
	ComSeq   SeqNo    `json:"com_seq_num"`
}

func (b *RawBlock) FullHash() []byte { return b.Hash }

func (b *RawBlock) Previous() Links { return b.Prev }

func (b *RawBlock) Links() Links { return b.ComLinks }

func (b *RawBlock) SequenceNumber() SeqNo { return b.SeqNum }

func (b *RawBlock) CommunitySeqNum() SeqNo { return b.ComSeq }

// HexBytes is a byte slice that renders as a hex string in JSON.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	*h = b
	return nil
}

// MarshalJSON renders a range as a [lo, hi] pair.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]SeqNo{r.Lo, r.Hi})
}

// UnmarshalJSON parses a [lo, hi] pair.
func (r *Range) UnmarshalJSON(data []byte) error {
	var pair [2]SeqNo
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("range must be a [lo, hi] pair: %w", err)
	}
	r.Lo = pair[0]
	r.Hi = pair[1]
	return nil
}

// MarshalJSON renders a reference as a [seq, "hexhash"] pair.
func (r BlockRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Seq, r.Hash.String()})
}

// UnmarshalJSON parses a [seq, "hexhash"] pair.
func (r *BlockRef) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("block ref must be a [seq, hash] pair: %w", err)
	}
	var seq SeqNo
	if err := json.Unmarshal(pair[0], &seq); err != nil {
		return fmt.Errorf("block ref seq: %w", err)
	}
	var hs string
	if err := json.Unmarshal(pair[1], &hs); err != nil {
		return fmt.Errorf("block ref hash: %w", err)
	}
	h, err := ShortHashFromHex(hs)
	if err != nil {
		return err
	}
	r.Seq = seq
	r.Hash = h
	return nil
}
