// Package wire defines the frontier summary messages exchanged during
// reconciliation and their deterministic byte encoding.
//
// A message is an RLP list of [key, value] pairs. Keys are one-byte
// strings ("t", "h", "i" for a frontier; "m", "c" for a diff) and are
// always emitted in that order, so identical logical values produce
// byte-identical messages.
package wire

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/noodlenet/plexus/internal/types"
)

// Frontier is the compact summary of a chain view: the current tip set,
// the known gaps compressed to ranges, and the tracked inconsistencies.
type Frontier struct {
	Terminal        types.Links  `json:"terminal"`
	Holes           types.Ranges `json:"holes"`
	Inconsistencies types.Links  `json:"inconsistencies"`
}

// FrontierDiff is the result of reconciling a local view against a
// remote frontier: the heights to request and the conflicting
// references to re-fetch.
type FrontierDiff struct {
	Missing   types.Ranges `json:"missing"`
	Conflicts types.Links  `json:"conflicts"`
}

// IsEmpty reports whether the diff requests nothing.
func (d FrontierDiff) IsEmpty() bool {
	return len(d.Missing) == 0 && len(d.Conflicts) == 0
}

// EncodeRLP writes the frontier as [["t", terminal], ["h", holes],
// ["i", inconsistencies]].
func (f Frontier) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		[]any{"t", f.Terminal},
		[]any{"h", f.Holes},
		[]any{"i", f.Inconsistencies},
	})
}

// DecodeRLP reads the tagged pairs. Pairs may arrive in any order but
// each key at most once; unknown keys are rejected.
func (f *Frontier) DecodeRLP(s *rlp.Stream) error {
	return decodeTagged(s, map[string]any{
		"t": &f.Terminal,
		"h": &f.Holes,
		"i": &f.Inconsistencies,
	})
}

// EncodeRLP writes the diff as [["m", missing], ["c", conflicts]].
func (d FrontierDiff) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		[]any{"m", d.Missing},
		[]any{"c", d.Conflicts},
	})
}

// DecodeRLP reads the tagged pairs of a diff.
func (d *FrontierDiff) DecodeRLP(s *rlp.Stream) error {
	return decodeTagged(s, map[string]any{
		"m": &d.Missing,
		"c": &d.Conflicts,
	})
}

// decodeTagged reads a list of [key, value] pairs, decoding each value
// into the target registered for its key.
func decodeTagged(s *rlp.Stream, targets map[string]any) error {
	if _, err := s.List(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(targets))
	for {
		if _, err := s.List(); err != nil {
			if err == rlp.EOL {
				break
			}
			return err
		}
		key, err := s.Bytes()
		if err != nil {
			return err
		}
		k := string(key)
		target, known := targets[k]
		if !known {
			return fmt.Errorf("unknown message key %q", k)
		}
		if seen[k] {
			return fmt.Errorf("duplicate message key %q", k)
		}
		seen[k] = true
		if err := s.Decode(target); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
		if err := s.ListEnd(); err != nil {
			return err
		}
	}
	return s.ListEnd()
}

// ToBytes encodes the frontier deterministically.
func (f Frontier) ToBytes() ([]byte, error) {
	return rlp.EncodeToBytes(f)
}

// FrontierFromBytes decodes and canonically validates a frontier.
// All failures wrap types.ErrFrontierDecode.
func FrontierFromBytes(b []byte) (Frontier, error) {
	var f Frontier
	if err := rlp.DecodeBytes(b, &f); err != nil {
		return Frontier{}, fmt.Errorf("%w: %v", types.ErrFrontierDecode, err)
	}
	if err := f.validate(); err != nil {
		return Frontier{}, fmt.Errorf("%w: %v", types.ErrFrontierDecode, err)
	}
	return f, nil
}

// ToBytes encodes the diff deterministically.
func (d FrontierDiff) ToBytes() ([]byte, error) {
	return rlp.EncodeToBytes(d)
}

// FrontierDiffFromBytes decodes and canonically validates a diff.
// All failures wrap types.ErrFrontierDecode.
func FrontierDiffFromBytes(b []byte) (FrontierDiff, error) {
	var d FrontierDiff
	if err := rlp.DecodeBytes(b, &d); err != nil {
		return FrontierDiff{}, fmt.Errorf("%w: %v", types.ErrFrontierDecode, err)
	}
	if err := d.validate(); err != nil {
		return FrontierDiff{}, fmt.Errorf("%w: %v", types.ErrFrontierDecode, err)
	}
	return d, nil
}

func (f Frontier) validate() error {
	if err := f.Terminal.Validate(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := f.Holes.Validate(); err != nil {
		return fmt.Errorf("holes: %w", err)
	}
	if err := f.Inconsistencies.Validate(); err != nil {
		return fmt.Errorf("inconsistencies: %w", err)
	}
	return nil
}

func (d FrontierDiff) validate() error {
	if err := d.Missing.Validate(); err != nil {
		return fmt.Errorf("missing: %w", err)
	}
	if err := d.Conflicts.Validate(); err != nil {
		return fmt.Errorf("conflicts: %w", err)
	}
	return nil
}
