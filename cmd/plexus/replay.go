package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/noodlenet/plexus/internal/chain"
	"github.com/noodlenet/plexus/internal/config"
	"github.com/noodlenet/plexus/internal/debug"
	"github.com/noodlenet/plexus/internal/types"
)

// newChain builds a chain view from the active configuration.
func newChain() *chain.Chain {
	opts := []chain.Option{}
	if n := config.GetInt("cache-size"); n > 0 {
		opts = append(opts, chain.CacheSize(n))
	}
	if config.GetBool("personal") {
		opts = append(opts, chain.Personal())
	}
	return chain.New(opts...)
}

// replayBlocks ingests a JSONL block log into a fresh chain view. One
// block per line:
//
//	{"hash":"<hex>","previous":[[1,"61616161"]],"links":[],"sequence_number":2,"com_seq_num":0}
//
// Lines are ingested in file order; out-of-order logs are fine, the
// chain tracks the resulting holes.
func replayBlocks(path string) (*chain.Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening block log: %w", err)
	}
	defer f.Close()

	c := newChain()
	log := debug.Logger()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	ingested := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var blk types.RawBlock
		if err := json.Unmarshal(line, &blk); err != nil {
			return nil, fmt.Errorf("parsing block at line %d: %w", lineNum, err)
		}
		if err := c.AddBlock(&blk); err != nil {
			return nil, fmt.Errorf("ingesting block at line %d: %w", lineNum, err)
		}
		ingested++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading block log: %w", err)
	}

	log.Debug("replayed block log", "path", path, "blocks", ingested, "max_seq", c.MaxKnownSeq())
	return c, nil
}
