package timeexpand

import "github.com/passbi/railcore/internal/graph"

// RestrictFirstBoard returns a copy of g in which, among the platform
// singularities reachable from origin by following only Wait edges (i.e.
// before boarding anything), every Board edge to a train other than
// allowedTrain is dropped. Any path through the result must board
// allowedTrain first — this is how enumerating first-train alternatives
// forces each candidate path down a distinct initial train; transfers
// later in the journey are untouched since they depart from singularities
// outside this pre-boarding set.
func RestrictFirstBoard(g *Graph, origin Singularity, allowedTrain int) *Graph {
	preBoard := reachableByWaitOnly(g, origin)

	out := graph.New[Singularity, Action]()
	for _, n := range g.Nodes() {
		out.Insert(n)
	}
	for _, n := range g.Nodes() {
		restricted := preBoard[n]
		for _, e := range g.Neighbors(n) {
			if restricted {
				if b, ok := e.Payload.(Board); ok && b.TrainID != allowedTrain {
					continue
				}
			}
			out.Connect(n, e.Payload, e.To)
		}
	}
	return out
}

func reachableByWaitOnly(g *Graph, origin Singularity) map[Singularity]bool {
	seen := map[Singularity]bool{origin: true}
	queue := []Singularity{origin}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, e := range g.Neighbors(s) {
			if _, ok := e.Payload.(Wait); !ok {
				continue
			}
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return seen
}
