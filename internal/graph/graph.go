// Package graph implements a generic directed graph parameterized over a
// comparable node-id type and an arbitrary edge-payload type, plus a
// predicate-terminated Dijkstra search. It knows nothing about time, trains,
// or stations — callers supply the node-id and payload types and a weight
// function.
package graph

import (
	"container/heap"
	"fmt"
)

// Edge is one outgoing edge: a payload plus the destination node id.
type Edge[K comparable, E any] struct {
	Payload E
	To      K
}

type node[K comparable, E any] struct {
	id    K
	edges []Edge[K, E]
}

// Graph owns a mapping from node-id to node, each node owning an ordered
// list of outgoing edges. Zero value is not usable; construct with New.
type Graph[K comparable, E any] struct {
	nodes map[K]*node[K, E]
	// order records insertion order, as returned by Nodes; seq maps each id
	// to its index in order.
	order []K
	seq   map[K]int
}

// New returns an empty graph.
func New[K comparable, E any]() *Graph[K, E] {
	return &Graph[K, E]{
		nodes: make(map[K]*node[K, E]),
		seq:   make(map[K]int),
	}
}

// Insert is idempotent; it creates an empty node for id if one is not
// already present.
func (g *Graph[K, E]) Insert(id K) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node[K, E]{id: id}
	g.seq[id] = len(g.order)
	g.order = append(g.order, id)
}

// Has reports whether id has been inserted.
func (g *Graph[K, E]) Has(id K) bool {
	_, ok := g.nodes[id]
	return ok
}

// Connect appends an outgoing edge from src to dst carrying payload. It does
// not deduplicate. Both endpoints must already exist via Insert.
func (g *Graph[K, E]) Connect(src K, payload E, dst K) {
	n, ok := g.nodes[src]
	if !ok {
		panic(fmt.Sprintf("graph: Connect from unknown node %v", src))
	}
	if _, ok := g.nodes[dst]; !ok {
		panic(fmt.Sprintf("graph: Connect to unknown node %v", dst))
	}
	n.edges = append(n.edges, Edge[K, E]{Payload: payload, To: dst})
}

// Neighbors returns the outgoing edges of id, or nil if id is absent.
func (g *Graph[K, E]) Neighbors(id K) []Edge[K, E] {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return n.edges
}

// NodeCount returns the number of distinct nodes inserted.
func (g *Graph[K, E]) NodeCount() int {
	return len(g.nodes)
}

// Nodes returns every node id, in insertion order.
func (g *Graph[K, E]) Nodes() []K {
	out := make([]K, len(g.order))
	copy(out, g.order)
	return out
}

// Weigher extracts the non-negative weight in seconds from an edge payload.
type Weigher[E any] func(E) int64

// PrevEdge records the predecessor pointer used to backtrack a shortest path:
// the node the edge came from, and the payload that was traversed.
type PrevEdge[K comparable, E any] struct {
	From    K
	Payload E
}

// DistEntry is one row of a Distances map: the best known cost to reach a
// node, and the edge that achieved it (nil for the origin). Tie is the
// accumulated secondary tie-break metric (see Dijkstra's tie parameter),
// zero if no tie-break weigher was supplied.
type DistEntry[K comparable, E any] struct {
	Cost int64
	Tie  int64
	Prev *PrevEdge[K, E]
}

// Distances maps every settled or tentatively-touched node to its best known
// cost and predecessor edge.
type Distances[K comparable, E any] map[K]DistEntry[K, E]

type pqItem[K comparable] struct {
	id   K
	cost int64
	tie  int64
	seq  int // insertion order, for deterministic tie-breaking
}

type priorityQueue[K comparable] []*pqItem[K]

func (pq priorityQueue[K]) Len() int { return len(pq) }
func (pq priorityQueue[K]) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	if pq[i].tie != pq[j].tie {
		return pq[i].tie < pq[j].tie
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue[K]) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue[K]) Push(x any)    { *pq = append(*pq, x.(*pqItem[K])) }
func (pq *priorityQueue[K]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// Dijkstra runs a predicate-terminated shortest-path search from origin.
// It returns the first node id popped off the queue that satisfies match,
// the distances map accumulated so far, and ok=false if the queue emptied
// without a match ("no path").
//
// tie, if non-nil, supplies a secondary per-edge metric (e.g. "1 if this is
// a train change, else 0") used to break cost ties deterministically before
// falling back to insertion order — this lets a caller impose a tie-break
// rule finer than plain insertion order without the graph package knowing
// anything about what a train change is. Pass nil to tie-break by insertion
// order alone.
//
// Decrease-key is implemented by lazy deletion: relaxing an already-queued
// node pushes a fresh, cheaper entry rather than mutating the heap in place;
// stale entries are detected and skipped on pop by comparing against the
// settled cost recorded in dist.
func (g *Graph[K, E]) Dijkstra(origin K, weight Weigher[E], tie Weigher[E], match func(K) bool) (K, Distances[K, E], bool) {
	dist := make(Distances[K, E])
	dist[origin] = DistEntry[K, E]{Cost: 0, Tie: 0, Prev: nil}

	pq := &priorityQueue[K]{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &pqItem[K]{id: origin, cost: 0, tie: 0, seq: seq})
	seq++

	settled := make(map[K]bool)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem[K])
		if settled[item.id] {
			continue
		}
		if entry, ok := dist[item.id]; ok && (item.cost > entry.Cost || (item.cost == entry.Cost && item.tie > entry.Tie)) {
			continue // stale lazy-deleted entry
		}
		settled[item.id] = true

		if match(item.id) {
			return item.id, dist, true
		}

		for _, e := range g.Neighbors(item.id) {
			w := weight(e.Payload)
			if w < 0 {
				panic(fmt.Sprintf("graph: negative edge weight %d on edge from %v to %v", w, item.id, e.To))
			}
			nextCost := item.cost + w
			nextTie := item.tie
			if tie != nil {
				nextTie += tie(e.Payload)
			}
			cur, have := dist[e.To]
			better := !have || nextCost < cur.Cost || (nextCost == cur.Cost && nextTie < cur.Tie)
			if better {
				dist[e.To] = DistEntry[K, E]{
					Cost: nextCost,
					Tie:  nextTie,
					Prev: &PrevEdge[K, E]{From: item.id, Payload: e.Payload},
				}
				heap.Push(pq, &pqItem[K]{id: e.To, cost: nextCost, tie: nextTie, seq: seq})
				seq++
			}
		}
	}

	var zero K
	return zero, dist, false
}

// Backtrack follows best_prev_edge pointers from matched back to origin and
// returns the forward-ordered edge sequence. It panics if dist does not
// contain a chain rooted at an entry with a nil Prev (the origin).
func Backtrack[K comparable, E any](dist Distances[K, E], matched K) []PrevEdge[K, E] {
	var reversed []PrevEdge[K, E]
	cur := matched
	for {
		entry, ok := dist[cur]
		if !ok {
			panic(fmt.Sprintf("graph: Backtrack: %v not present in distances map", cur))
		}
		if entry.Prev == nil {
			break
		}
		reversed = append(reversed, *entry.Prev)
		cur = entry.Prev.From
	}
	path := make([]PrevEdge[K, E], len(reversed))
	for i := range reversed {
		path[i] = reversed[len(reversed)-1-i]
	}
	return path
}
