package repository

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/okian/revgroups/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score ASC, then seq ASC (deterministic, first found wins).
// "less" means ranks earlier, so in-order traversal produces the shortlist
// from best to worst. Priorities are hashes of seq, which keeps the tree
// balanced no matter how scores arrive.

// treap node
type node struct {
	seq   uint64
	score float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aSeq) should appear before (bScore, bSeq).
func less(aScore float64, aSeq uint64, bScore float64, bSeq uint64) bool {
	if aScore != bScore {
		return aScore < bScore // lower score ranks earlier
	}
	return aSeq < bSeq
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func priority(seq uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], seq)
	return xxh3.Hash(b[:])
}

func insert(n *node, seq uint64, score float64) *node {
	if n == nil {
		return &node{seq: seq, score: score, prio: priority(seq), size: 1}
	}
	if less(score, seq, n.score, n.seq) {
		n.left = insert(n.left, seq, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, seq, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, seq uint64, score float64) *node {
	if n == nil {
		return nil
	}
	if score == n.score && seq == n.seq {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, seq, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, seq, score)
		}
	} else if less(score, seq, n.score, n.seq) {
		n.left = deleteNode(n.left, seq, score)
	} else {
		n.right = deleteNode(n.right, seq, score)
	}
	fix(n)
	return n
}

// worst returns the last node in rank order.
func worst(n *node) *node {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

// position returns how many nodes rank before (score, seq).
func position(n *node, seq uint64, score float64) int {
	pos := 0
	for n != nil {
		if less(score, seq, n.score, n.seq) {
			n = n.left
			continue
		}
		if score == n.score && seq == n.seq {
			return pos + nsize(n.left)
		}
		pos += nsize(n.left) + 1
		n = n.right
	}
	return pos
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, byID map[uint64]Entry, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, byID, out)
	if len(*out) < limit {
		if e, ok := byID[n.seq]; ok {
			*out = append(*out, e)
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, byID, out)
	}
}

// TreapStore is a ranked shortlist safe for concurrent writers.
type TreapStore struct {
	mu       sync.RWMutex
	root     *node
	byID     map[uint64]Entry
	capacity int
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[uint64]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateShortlistSize(0)
	return s
}

// Insert implements Store.Insert with O(log n) expected time.
func (s *TreapStore) Insert(_ context.Context, e Entry) (bool, error) { //nolint:gocritic // hugeParam: entries are stored by value
	s.mu.Lock()
	if _, ok := s.byID[e.Seq]; ok {
		s.mu.Unlock()
		return false, ErrDuplicate
	}
	if s.capacity > 0 && len(s.byID) >= s.capacity {
		w := worst(s.root)
		if !less(e.Score, e.Seq, w.score, w.seq) {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, w.seq, w.score)
		delete(s.byID, w.seq)
	}
	e.Rank = 0
	s.byID[e.Seq] = e
	s.root = insert(s.root, e.Seq, e.Score)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateShortlistSize(count)
	return true, nil
}

// Rank returns the current rank and score for a candidate. Equal scores
// share a rank; ranks are consecutive.
func (s *TreapStore) Rank(_ context.Context, seq uint64) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[seq]
	if !ok {
		return Entry{}, ErrNotFound
	}

	upto := position(s.root, e.Seq, e.Score) + 1
	all := make([]Entry, 0, upto)
	collectTopN(s.root, upto, s.byID, &all)
	assignRanksWithTies(all)
	return all[len(all)-1], nil
}

// TopN returns the best n entries ordered by score asc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// All returns every kept entry in rank order.
func (s *TreapStore) All(ctx context.Context) []Entry {
	n := s.Count(ctx)
	if n == 0 {
		return nil
	}
	out, _ := s.TopN(ctx, n)
	return out
}

// Count returns the number of kept candidates.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignRanksWithTies assigns ranks with proper tie handling.
// Candidates with the same score get the same rank, and ranks stay
// consecutive.
func assignRanksWithTies(entries []Entry) {
	currentRank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			currentRank++
		}
		entries[i].Rank = currentRank
	}
}
