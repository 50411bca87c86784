package mesh

type edge struct{ a, b int }

// edgeBalance pairs each directed edge with a pending reverse edge and
// keeps count of the ones left unpaired.
type edgeBalance map[edge]int

func (eb edgeBalance) add(a, b int) {
	if eb[edge{b, a}] > 0 {
		eb[edge{b, a}]--
		return
	}
	eb[edge{a, b}]++
}

func (eb edgeBalance) open() int {
	n := 0
	for _, c := range eb {
		n += c
	}
	return n
}

// UnconnectedLoopEdges counts directed edges of the given facets whose
// reverse edge does not occur in any loop. Each facet is a list of loops;
// a closed, consistently oriented surface yields zero.
func UnconnectedLoopEdges(facets [][]Face) int {
	eb := edgeBalance{}
	for _, loops := range facets {
		for _, loop := range loops {
			for i := range loop {
				eb.add(loop[i], loop[(i+1)%len(loop)])
			}
		}
	}
	return eb.open()
}

// UnconnectedTriangleEdges is UnconnectedLoopEdges for a triangle list.
func UnconnectedTriangleEdges(tris [][3]int) int {
	eb := edgeBalance{}
	for _, t := range tris {
		eb.add(t[0], t[1])
		eb.add(t[1], t[2])
		eb.add(t[2], t[0])
	}
	return eb.open()
}
