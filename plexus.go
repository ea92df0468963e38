// Package plexus provides the public API of the community DAG chain
// store: per-community chain views over signed blocks, frontier
// summaries, and frontier reconciliation.
//
// The heavy lifting lives in internal packages; this package exports
// only the types and constructors an embedding overlay node needs.
package plexus

import (
	"github.com/noodlenet/plexus/internal/chain"
	"github.com/noodlenet/plexus/internal/hashing"
	"github.com/noodlenet/plexus/internal/types"
	"github.com/noodlenet/plexus/internal/wire"
)

// Store is the chain-store capability: ingest blocks, snapshot the
// frontier, and reconcile against a remote frontier. Chain is the
// default in-memory implementation.
type Store = chain.Store

// Chain is the in-memory DAG chain view of one community.
type Chain = chain.Chain

// Option configures a Chain at construction.
type Option = chain.Option

// NewChain creates an empty chain view.
func NewChain(opts ...Option) *Chain {
	return chain.New(opts...)
}

// Personal makes a chain follow personal (previous) links instead of
// community links.
func Personal() Option { return chain.Personal() }

// CacheSize overrides the terminal-cache capacity (default 100000).
func CacheSize(n int) Option { return chain.CacheSize(n) }

// Identity and summary types.
type (
	SeqNo        = types.SeqNo
	ShortHash    = types.ShortHash
	BlockRef     = types.BlockRef
	Links        = types.Links
	Range        = types.Range
	Ranges       = types.Ranges
	Block        = types.Block
	RawBlock     = types.RawBlock
	Frontier     = wire.Frontier
	FrontierDiff = wire.FrontierDiff
)

// NewLinks builds canonical (sorted, deduplicated) Links.
func NewLinks(refs ...BlockRef) Links { return types.NewLinks(refs...) }

// GenesisRef returns the synthetic root reference (0, "0000").
func GenesisRef() BlockRef { return types.GenesisRef() }

// Shorten derives a block's 4-byte short hash from its full digest.
func Shorten(fullHash []byte) ShortHash { return hashing.Shorten(fullHash) }

// FrontierFromBytes decodes and validates a frontier wire message.
func FrontierFromBytes(b []byte) (Frontier, error) {
	return wire.FrontierFromBytes(b)
}

// FrontierDiffFromBytes decodes and validates a diff wire message.
func FrontierDiffFromBytes(b []byte) (FrontierDiff, error) {
	return wire.FrontierDiffFromBytes(b)
}

// Sentinel errors surfaced by the chain store.
var (
	ErrMalformedBlock = types.ErrMalformedBlock
	ErrFrontierDecode = types.ErrFrontierDecode
	ErrCycleDetected  = types.ErrCycleDetected
)
