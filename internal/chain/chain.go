// Package chain implements the per-community DAG chain store: block
// ingestion, structural bookkeeping (versions, forward pointers, holes,
// inconsistencies), incremental terminal derivation, and frontier
// reconciliation.
package chain

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/noodlenet/plexus/internal/hashing"
	"github.com/noodlenet/plexus/internal/types"
	"github.com/noodlenet/plexus/internal/wire"
)

// Store is the chain-store capability: ingest blocks, snapshot the
// frontier, and diff against a remote frontier. Chain is the in-memory
// implementation; persistence adapters implement the same interface.
type Store interface {
	AddBlock(b types.Block) error
	Frontier() wire.Frontier
	Reconcile(remote wire.Frontier) (wire.FrontierDiff, error)
}

// DefaultCacheSize bounds the terminal traversal cache.
const DefaultCacheSize = 100_000

// Option configures a Chain at construction.
type Option func(*config)

type config struct {
	personal  bool
	cacheSize int
}

// Personal makes the chain follow a block's previous links and
// author-local sequence number instead of its community links and
// community sequence number. Everything else is identical.
func Personal() Option {
	return func(c *config) { c.personal = true }
}

// CacheSize overrides the terminal-cache capacity.
func CacheSize(n int) Option {
	return func(c *config) { c.cacheSize = n }
}

// Chain is the DAG chain store of one community. A single mutex guards
// all mutable state, including the traversal cache: ingest, frontier
// snapshots, and reconciliation all serialize on it.
type Chain struct {
	mu       sync.Mutex
	personal bool

	// versions holds every short hash stored at each height.
	versions map[types.SeqNo]mapset.Set[types.ShortHash]
	// forward holds child edges, populated when a child arrives even
	// if the parent is not yet known locally. Late-arriving ancestors
	// resolve silently through it.
	forward map[types.BlockRef]mapset.Set[types.BlockRef]
	// holes are heights below maxKnownSeq with no stored block.
	holes mapset.Set[types.SeqNo]
	// inconsistencies are referenced parents whose hash disagrees with
	// every stored version at that height.
	inconsistencies mapset.Set[types.BlockRef]
	// terminal is the current tip set in canonical Links order.
	terminal    types.Links
	maxKnownSeq types.SeqNo

	// termCache memoizes the descendant-tip closure under forward.
	// Entries go stale when a cached tip acquires a child; staleness
	// is detected lazily on the next traversal and the entry rewritten.
	termCache *lru.Cache[types.BlockRef, mapset.Set[types.BlockRef]]
}

// New creates an empty chain view with the genesis reference as its
// only terminal.
func New(opts ...Option) *Chain {
	cfg := config{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = DefaultCacheSize
	}
	// Size is positive, so the constructor cannot fail.
	cache, _ := lru.New[types.BlockRef, mapset.Set[types.BlockRef]](cfg.cacheSize)
	return &Chain{
		personal:        cfg.personal,
		versions:        make(map[types.SeqNo]mapset.Set[types.ShortHash]),
		forward:         make(map[types.BlockRef]mapset.Set[types.BlockRef]),
		holes:           mapset.NewThreadUnsafeSet[types.SeqNo](),
		inconsistencies: mapset.NewThreadUnsafeSet[types.BlockRef](),
		terminal:        types.Links{types.GenesisRef()},
		termCache:       cache,
	}
}

// blockIdentity selects the link set and height the chain indexes by.
func (c *Chain) blockIdentity(b types.Block) (types.Links, types.SeqNo) {
	if c.personal {
		return b.Previous(), b.SequenceNumber()
	}
	return b.Links(), b.CommunitySeqNum()
}

// validateBlock rejects malformed input before any state mutation.
// A zero-sequence parent link is valid only when it is exactly the
// genesis reference.
func validateBlock(b types.Block, links types.Links, seq types.SeqNo) error {
	if len(b.FullHash()) == 0 {
		return fmt.Errorf("empty full hash: %w", types.ErrMalformedBlock)
	}
	if seq < 1 {
		return fmt.Errorf("block at reserved height %d: %w", seq, types.ErrMalformedBlock)
	}
	for _, link := range links {
		if link.Seq == types.GenesisSeq && !link.IsGenesis() {
			return fmt.Errorf("zero-sequence link %s is not genesis: %w", link, types.ErrMalformedBlock)
		}
	}
	return nil
}

// AddBlock ingests one block: records its version, links its parents
// forward, maintains holes and inconsistencies, and re-derives the
// terminal set. Ingesting the same block twice is a no-op.
func (c *Chain) AddBlock(b types.Block) error {
	links, seq := c.blockIdentity(b)
	if err := validateBlock(b, links, seq); err != nil {
		return err
	}
	ref := types.BlockRef{Seq: seq, Hash: hashing.Shorten(b.FullHash())}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordVersion(ref)
	c.linkForward(links, ref)
	c.updateHoles(seq, links)
	c.updateInconsistencies(links, ref)
	return c.updateTerminal(ref)
}

func (c *Chain) recordVersion(ref types.BlockRef) {
	set, ok := c.versions[ref.Seq]
	if !ok {
		set = mapset.NewThreadUnsafeSet[types.ShortHash]()
		c.versions[ref.Seq] = set
		if ref.Seq > c.maxKnownSeq {
			c.maxKnownSeq = ref.Seq
		}
	}
	set.Add(ref.Hash)
}

func (c *Chain) linkForward(links types.Links, child types.BlockRef) {
	for _, parent := range links {
		set, ok := c.forward[parent]
		if !ok {
			set = mapset.NewThreadUnsafeSet[types.BlockRef]()
			c.forward[parent] = set
		}
		set.Add(child)
	}
}

// updateHoles plugs the hole this block fills, then walks each parent
// link downward past every unknown height. Heights already present in
// versions terminate the walk.
func (c *Chain) updateHoles(seq types.SeqNo, links types.Links) {
	c.holes.Remove(seq)
	for _, link := range links {
		for s := link.Seq; s >= 1; s-- {
			if _, known := c.versions[s]; known {
				break
			}
			c.holes.Add(s)
		}
	}
}

// updateInconsistencies flags parent links that disagree with stored
// versions at their height, and clears the block's own ref now that it
// has arrived.
func (c *Chain) updateInconsistencies(links types.Links, ref types.BlockRef) {
	for _, link := range links {
		if set, ok := c.versions[link.Seq]; ok && !set.Contains(link.Hash) {
			c.inconsistencies.Add(link)
		}
	}
	c.inconsistencies.Remove(ref)
}

// updateTerminal re-derives the tip set as the union of the closure
// from the new block and the closure from the previous terminal set.
// The new block may itself be a tip, and it may redirect part of the
// previous frontier. The synthetic genesis is dropped as soon as any
// real tip exists.
func (c *Chain) updateTerminal(ref types.BlockRef) error {
	path := make(map[types.BlockRef]bool)
	tips, err := c.calcTerminal(types.Links{ref}, path)
	if err != nil {
		return err
	}
	prev, err := c.calcTerminal(c.terminal, path)
	if err != nil {
		return err
	}
	tips = tips.Union(prev)
	if tips.Cardinality() > 1 {
		tips.Remove(types.GenesisRef())
	}
	c.terminal = types.LinksFromSet(tips)
	return nil
}

// nextLinks returns the children of ref in canonical order.
func (c *Chain) nextLinks(ref types.BlockRef) types.Links {
	return types.LinksFromSet(c.forward[ref])
}

// calcTerminal computes the tip closure of the given starting refs
// under forward, memoizing per-ref results in termCache.
//
// On a cache hit, each cached tip is re-examined: if it still has no
// forward edge the cached set is valid and included whole; if any tip
// has since acquired children, traversal resumes from those children
// and a fresh entry built from the resumed results replaces the stale
// one. Entries are never invalidated eagerly on new edges; staleness is
// only ever observed here.
//
// path carries the refs currently being descended through; revisiting
// one means the forward pointers contain a cycle and the traversal
// aborts without writing a cache entry for it.
func (c *Chain) calcTerminal(current types.Links, path map[types.BlockRef]bool) (mapset.Set[types.BlockRef], error) {
	tips := mapset.NewThreadUnsafeSet[types.BlockRef]()
	for _, ref := range current {
		if path[ref] {
			return nil, fmt.Errorf("traversal revisited %s: %w", ref, types.ErrCycleDetected)
		}
		if _, hasNext := c.forward[ref]; !hasNext {
			tips.Add(ref)
			continue
		}
		path[ref] = true
		cached, hit := c.termCache.Get(ref)
		if hit {
			var fresh mapset.Set[types.BlockRef]
			for _, cv := range cached.ToSlice() {
				if _, hasNext := c.forward[cv]; !hasNext {
					tips = tips.Union(cached)
					continue
				}
				sub, err := c.calcTerminal(c.nextLinks(cv), path)
				if err != nil {
					delete(path, ref)
					return nil, err
				}
				if fresh == nil {
					fresh = mapset.NewThreadUnsafeSet[types.BlockRef]()
				}
				fresh = fresh.Union(sub)
				tips = tips.Union(sub)
			}
			if fresh != nil {
				c.termCache.Add(ref, fresh)
			}
		} else {
			sub, err := c.calcTerminal(c.nextLinks(ref), path)
			if err != nil {
				delete(path, ref)
				return nil, err
			}
			c.termCache.Add(ref, sub)
			tips = tips.Union(sub)
		}
		delete(path, ref)
	}
	return tips, nil
}

// Terminal returns a copy of the current tip set.
func (c *Chain) Terminal() types.Links {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(types.Links, len(c.terminal))
	copy(out, c.terminal)
	return out
}

// MaxKnownSeq returns the highest height ever ingested.
func (c *Chain) MaxKnownSeq() types.SeqNo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxKnownSeq
}

// Frontier snapshots the chain view as a wire summary: the tip set,
// the holes compressed to canonical ranges, and the sorted
// inconsistencies.
func (c *Chain) Frontier() wire.Frontier {
	c.mu.Lock()
	defer c.mu.Unlock()
	term := make(types.Links, len(c.terminal))
	copy(term, c.terminal)
	return wire.Frontier{
		Terminal:        term,
		Holes:           types.CompressRanges(c.holes),
		Inconsistencies: types.LinksFromSet(c.inconsistencies),
	}
}

// Reconcile diffs the local view against a remote frontier, producing
// the heights to request from the remote and the references in
// conflict. The lock is held for the whole computation because the
// inconsistency-escalation pass traverses (and rewrites) the terminal
// cache.
func (c *Chain) Reconcile(remote wire.Frontier) (wire.FrontierDiff, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Heights the remote claims to hold: everything up to its highest
	// terminal, minus its declared holes. An empty remote terminal
	// covers nothing.
	remoteMax := remote.Terminal.MaxSeq()
	remoteKnown := mapset.NewThreadUnsafeSet[types.SeqNo]()
	for s := types.SeqNo(1); s <= remoteMax; s++ {
		if !remote.Holes.Contains(s) {
			remoteKnown.Add(s)
		}
	}
	localKnown := mapset.NewThreadUnsafeSet[types.SeqNo]()
	for s := types.SeqNo(1); s <= c.maxKnownSeq; s++ {
		if !c.holes.Contains(s) {
			localKnown.Add(s)
		}
	}
	missing := types.CompressRanges(remoteKnown.Difference(localKnown))

	// A remote tip that disagrees with our stored set at its height is
	// in conflict outright.
	conflicts := mapset.NewThreadUnsafeSet[types.BlockRef]()
	for _, ref := range remote.Terminal {
		if set, ok := c.versions[ref.Seq]; ok && !set.Contains(ref.Hash) {
			conflicts.Add(ref)
		}
	}

	// Escalation: if the remote authoritatively accepts a descendant of
	// something we consider broken, demand the broken parent so the
	// disagreement can be resolved locally.
	for _, inc := range c.inconsistencies.ToSlice() {
		closure, err := c.calcTerminal(types.Links{inc}, make(map[types.BlockRef]bool))
		if err != nil {
			return wire.FrontierDiff{}, err
		}
		for _, tip := range closure.ToSlice() {
			if remote.Terminal.Contains(tip) &&
				!remote.Inconsistencies.Contains(tip) &&
				!remote.Holes.Contains(tip.Seq) {
				conflicts.Add(inc)
				break
			}
		}
	}

	return wire.FrontierDiff{
		Missing:   missing,
		Conflicts: types.LinksFromSet(conflicts),
	}, nil
}
