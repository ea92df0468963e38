// Package types defines the identity and summary types shared by the
// chain store: sequence numbers, short hashes, block references, and the
// canonical Links and Ranges forms used in frontier wire messages.
package types

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// ErrMalformedBlock is returned when a caller supplies a block whose
// parent links cannot be valid: a zero-sequence link other than the
// genesis reference, or a short hash of the wrong width. The chain
// state is never mutated for a malformed block.
var ErrMalformedBlock = errors.New("malformed block")

// ErrFrontierDecode is returned when frontier or diff bytes do not
// parse under the wire format, or parse but fail canonical-form checks.
// No partial value is ever returned alongside it.
var ErrFrontierDecode = errors.New("frontier decode failed")

// ErrCycleDetected is returned when a traversal of the forward pointers
// revisits a block reference already on the traversal path. Parent-link
// cycles only occur in adversarial input; the DAG produced by honest
// peers is acyclic.
var ErrCycleDetected = errors.New("cycle detected in forward pointers")

// SeqNo is a block height. 0 is the synthetic genesis height; real
// blocks are numbered from 1. Numbering is sparse: heights may be
// skipped and later filled in.
type SeqNo uint64

// GenesisSeq is the height of the synthetic genesis reference.
const GenesisSeq SeqNo = 0

// ShortHashLen is the fixed width of a short hash.
const ShortHashLen = 4

// ShortHash is the 4-byte tag identifying a block version at a height,
// derived as the leading prefix of SHA-256 over the block's full digest.
type ShortHash [ShortHashLen]byte

// GenesisShortHash returns the short hash of the synthetic genesis
// reference, the literal ASCII bytes "0000".
func GenesisShortHash() ShortHash {
	return ShortHash{'0', '0', '0', '0'}
}

// ShortHashFromBytes converts a raw byte slice into a ShortHash,
// rejecting any width other than ShortHashLen.
func ShortHashFromBytes(b []byte) (ShortHash, error) {
	var h ShortHash
	if len(b) != ShortHashLen {
		return h, fmt.Errorf("short hash must be %d bytes, got %d: %w", ShortHashLen, len(b), ErrMalformedBlock)
	}
	copy(h[:], b)
	return h, nil
}

// ShortHashFromHex parses a hex-encoded short hash.
func ShortHashFromHex(s string) (ShortHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ShortHash{}, fmt.Errorf("invalid short hash hex %q: %w", s, ErrMalformedBlock)
	}
	return ShortHashFromBytes(b)
}

func (h ShortHash) String() string {
	return hex.EncodeToString(h[:])
}

// BlockRef is the canonical block identity used throughout the chain
// store: a height paired with the short hash of one version at that
// height.
type BlockRef struct {
	Seq  SeqNo
	Hash ShortHash
}

// GenesisRef returns the synthetic root reference (0, "0000").
func GenesisRef() BlockRef {
	return BlockRef{Seq: GenesisSeq, Hash: GenesisShortHash()}
}

// IsGenesis reports whether r is the synthetic root reference.
func (r BlockRef) IsGenesis() bool {
	return r == GenesisRef()
}

// Compare orders references ascending by (Seq, Hash).
func (r BlockRef) Compare(other BlockRef) int {
	switch {
	case r.Seq < other.Seq:
		return -1
	case r.Seq > other.Seq:
		return 1
	}
	return bytes.Compare(r.Hash[:], other.Hash[:])
}

func (r BlockRef) String() string {
	return fmt.Sprintf("(%d,%s)", r.Seq, r.Hash)
}

// Links is an ordered, deduplicated sequence of block references,
// ascending by (Seq, Hash). The ordering is load-bearing: links
// participate in content hashes upstream and appear in stable-ordered
// frontier wire messages.
type Links []BlockRef

// NewLinks builds canonical Links from arbitrary references, sorting
// and deduplicating. Use this on the producer side; consumers of
// untrusted input should call Validate instead.
func NewLinks(refs ...BlockRef) Links {
	out := make(Links, len(refs))
	copy(out, refs)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	dedup := out[:0]
	for i, r := range out {
		if i == 0 || out[i-1] != r {
			dedup = append(dedup, r)
		}
	}
	return dedup
}

// LinksFromSet converts a reference set into canonical Links.
func LinksFromSet(s mapset.Set[BlockRef]) Links {
	return NewLinks(s.ToSlice()...)
}

// Validate rejects links that are not strictly ascending by
// (Seq, Hash). Duplicates fail the strictness check as well.
func (l Links) Validate() error {
	for i := 1; i < len(l); i++ {
		if l[i-1].Compare(l[i]) >= 0 {
			return fmt.Errorf("links not strictly ascending at index %d: %s >= %s", i, l[i-1], l[i])
		}
	}
	return nil
}

// Contains reports whether ref is present. Links are sorted, so this is
// a binary search.
func (l Links) Contains(ref BlockRef) bool {
	i := sort.Search(len(l), func(i int) bool { return l[i].Compare(ref) >= 0 })
	return i < len(l) && l[i] == ref
}

// MaxSeq returns the highest height present, or 0 for empty links.
func (l Links) MaxSeq() SeqNo {
	var max SeqNo
	for _, r := range l {
		if r.Seq > max {
			max = r.Seq
		}
	}
	return max
}

// Range is a closed interval [Lo, Hi] of heights with 1 <= Lo <= Hi.
type Range struct {
	Lo SeqNo
	Hi SeqNo
}

// Ranges is the canonical compressed form of a height set: ascending,
// non-overlapping, non-adjacent closed intervals.
type Ranges []Range

// Validate rejects ranges that are not in canonical form.
func (rs Ranges) Validate() error {
	for i, r := range rs {
		if r.Lo < 1 || r.Lo > r.Hi {
			return fmt.Errorf("range %d invalid: [%d,%d]", i, r.Lo, r.Hi)
		}
		if i > 0 && rs[i-1].Hi+1 >= r.Lo {
			return fmt.Errorf("ranges overlap or adjoin at index %d: [%d,%d] then [%d,%d]",
				i, rs[i-1].Lo, rs[i-1].Hi, r.Lo, r.Hi)
		}
	}
	return nil
}

// Contains reports whether seq falls inside any range.
func (rs Ranges) Contains(seq SeqNo) bool {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Hi >= seq })
	return i < len(rs) && rs[i].Lo <= seq
}

// CompressRanges folds a height set into canonical Ranges:
// {5,6,7,9,10} becomes [(5,7),(9,10)]. The empty set compresses to the
// empty sequence.
func CompressRanges(seqs mapset.Set[SeqNo]) Ranges {
	if seqs == nil || seqs.Cardinality() == 0 {
		return Ranges{}
	}
	sorted := seqs.ToSlice()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := Ranges{}
	cur := Range{Lo: sorted[0], Hi: sorted[0]}
	for _, s := range sorted[1:] {
		if s == cur.Hi+1 {
			cur.Hi = s
			continue
		}
		out = append(out, cur)
		cur = Range{Lo: s, Hi: s}
	}
	return append(out, cur)
}

// ExpandRanges is the inverse of CompressRanges.
func ExpandRanges(rs Ranges) mapset.Set[SeqNo] {
	out := mapset.NewThreadUnsafeSet[SeqNo]()
	for _, r := range rs {
		for s := r.Lo; s <= r.Hi; s++ {
			out.Add(s)
		}
	}
	return out
}
