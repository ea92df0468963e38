package wire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/noodlenet/plexus/internal/types"
)

func sh(s string) types.ShortHash {
	h, err := types.ShortHashFromBytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return h
}

func sampleFrontier() Frontier {
	return Frontier{
		Terminal: types.NewLinks(
			types.BlockRef{Seq: 2, Hash: sh("bbbb")},
			types.BlockRef{Seq: 2, Hash: sh("cccc")},
			types.BlockRef{Seq: 7, Hash: sh("aaaa")},
		),
		Holes: types.Ranges{{Lo: 3, Hi: 5}, {Lo: 9, Hi: 9}},
		Inconsistencies: types.NewLinks(
			types.BlockRef{Seq: 4, Hash: sh("dddd")},
		),
	}
}

func TestFrontierRoundTrip(t *testing.T) {
	f := sampleFrontier()
	data, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	back, err := FrontierFromBytes(data)
	if err != nil {
		t.Fatalf("FrontierFromBytes failed: %v", err)
	}
	if !reflect.DeepEqual(back, f) {
		t.Errorf("round trip = %+v, want %+v", back, f)
	}
}

func TestFrontierDiffRoundTrip(t *testing.T) {
	d := FrontierDiff{
		Missing:   types.Ranges{{Lo: 3, Hi: 5}},
		Conflicts: types.NewLinks(types.BlockRef{Seq: 2, Hash: sh("ffff")}),
	}
	data, err := d.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	back, err := FrontierDiffFromBytes(data)
	if err != nil {
		t.Fatalf("FrontierDiffFromBytes failed: %v", err)
	}
	if !reflect.DeepEqual(back, d) {
		t.Errorf("round trip = %+v, want %+v", back, d)
	}
}

func TestEncodingDeterministic(t *testing.T) {
	a, err := sampleFrontier().ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	// An independently constructed but logically identical frontier
	// must encode to the same bytes: messages are compared by hash.
	b, err := sampleFrontier().ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("identical frontiers encoded differently:\n%x\n%x", a, b)
	}
}

func TestEmptyFrontierRoundTrip(t *testing.T) {
	f := Frontier{Terminal: types.Links{types.GenesisRef()}}
	data, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	back, err := FrontierFromBytes(data)
	if err != nil {
		t.Fatalf("FrontierFromBytes failed: %v", err)
	}
	if len(back.Terminal) != 1 || !back.Terminal[0].IsGenesis() {
		t.Errorf("terminal = %v, want genesis only", back.Terminal)
	}
	if len(back.Holes) != 0 || len(back.Inconsistencies) != 0 {
		t.Errorf("empty frontier grew state: %+v", back)
	}
}

func TestDecodeErrors(t *testing.T) {
	// Hand-build malformed messages at the RLP level.
	enc := func(v any) []byte {
		b, err := rlp.EncodeToBytes(v)
		if err != nil {
			t.Fatalf("building test input: %v", err)
		}
		return b
	}
	pair := func(seq uint64, hash string) []any { return []any{seq, []byte(hash)} }

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte{0xff, 0x01, 0x02}},
		{"truncated", enc(sampleFrontier())[:5]},
		{"not a list", enc("hello")},
		{"unknown key", enc([]any{[]any{"x", []any{}}})},
		{"duplicate key", enc([]any{
			[]any{"t", []any{pair(1, "aaaa")}},
			[]any{"t", []any{pair(2, "bbbb")}},
		})},
		{"non-ascending terminal", enc([]any{
			[]any{"t", []any{pair(2, "bbbb"), pair(1, "aaaa")}},
		})},
		{"duplicate terminal ref", enc([]any{
			[]any{"t", []any{pair(1, "aaaa"), pair(1, "aaaa")}},
		})},
		{"wrong hash width", enc([]any{
			[]any{"t", []any{pair(1, "aaa")}},
		})},
		{"overlapping holes", enc([]any{
			[]any{"h", []any{[]any{uint64(1), uint64(5)}, []any{uint64(4), uint64(8)}}},
		})},
		{"adjacent holes", enc([]any{
			[]any{"h", []any{[]any{uint64(1), uint64(2)}, []any{uint64(3), uint64(4)}}},
		})},
		{"inverted hole range", enc([]any{
			[]any{"h", []any{[]any{uint64(5), uint64(3)}}},
		})},
		{"pair with extra element", enc([]any{
			[]any{"t", []any{pair(1, "aaaa")}, "extra"},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FrontierFromBytes(tt.data); !errors.Is(err, types.ErrFrontierDecode) {
				t.Errorf("FrontierFromBytes error = %v, want ErrFrontierDecode", err)
			}
		})
	}
}

func TestDiffDecodeRejectsFrontierKeys(t *testing.T) {
	data, err := sampleFrontier().ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	if _, err := FrontierDiffFromBytes(data); !errors.Is(err, types.ErrFrontierDecode) {
		t.Errorf("diff decode of frontier bytes: err = %v, want ErrFrontierDecode", err)
	}
}

func TestIsEmpty(t *testing.T) {
	if !(FrontierDiff{}).IsEmpty() {
		t.Error("zero diff not empty")
	}
	if (FrontierDiff{Missing: types.Ranges{{Lo: 1, Hi: 1}}}).IsEmpty() {
		t.Error("diff with missing range reported empty")
	}
	if (FrontierDiff{Conflicts: types.NewLinks(types.BlockRef{Seq: 1, Hash: sh("aaaa")})}).IsEmpty() {
		t.Error("diff with conflict reported empty")
	}
}
