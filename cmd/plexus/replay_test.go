package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/noodlenet/plexus/internal/hashing"
	"github.com/noodlenet/plexus/internal/types"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocks.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("writing block log: %v", err)
	}
	return path
}

func TestReplayBlocks(t *testing.T) {
	// b1 links genesis; b2 links b1 by its derived short hash.
	b1Short := hashing.Shorten([]byte{0xaa}).String()
	log := `{"hash":"aa","previous":[],"links":[[0,"30303030"]],"sequence_number":0,"com_seq_num":1}
{"hash":"bb","previous":[],"links":[[1,"` + b1Short + `"]],"sequence_number":0,"com_seq_num":2}

`
	c, err := replayBlocks(writeLog(t, log))
	if err != nil {
		t.Fatalf("replayBlocks failed: %v", err)
	}
	if got := c.MaxKnownSeq(); got != 2 {
		t.Errorf("maxKnownSeq = %d, want 2", got)
	}
	want := types.NewLinks(types.BlockRef{Seq: 2, Hash: hashing.Shorten([]byte{0xbb})})
	if got := c.Terminal(); !reflect.DeepEqual(got, want) {
		t.Errorf("terminal = %v, want %v", got, want)
	}
}

func TestReplayBlocksBadLine(t *testing.T) {
	_, err := replayBlocks(writeLog(t, "{not json}\n"))
	if err == nil {
		t.Fatal("malformed line accepted")
	}
}

func TestReplayBlocksRejectsMalformedBlock(t *testing.T) {
	log := `{"hash":"aa","previous":[],"links":[[0,"61616161"]],"sequence_number":0,"com_seq_num":1}
`
	_, err := replayBlocks(writeLog(t, log))
	if !errors.Is(err, types.ErrMalformedBlock) {
		t.Fatalf("err = %v, want ErrMalformedBlock", err)
	}
}

func TestReplayBlocksMissingFile(t *testing.T) {
	if _, err := replayBlocks(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("missing file accepted")
	}
}
