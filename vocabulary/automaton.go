package vocabulary

// automaton is an Aho-Corasick trie over normalized runes. Each node holds
// at most one literal since terms are deduplicated before insertion.
type automaton struct {
	nodes []acNode
}

type acNode struct {
	next  map[rune]int32
	fail  int32
	dict  int32 // nearest node on the fail chain that ends a literal, or -1
	out   int32 // literal ending here, or -1
	depth int32
}

func newAutomaton() *automaton {
	return &automaton{nodes: []acNode{{fail: 0, dict: -1, out: -1}}}
}

func (a *automaton) insert(term []rune, literal int) {
	cur := int32(0)
	for _, r := range term {
		nxt, ok := a.nodes[cur].next[r]
		if !ok {
			nxt = int32(len(a.nodes))
			a.nodes = append(a.nodes, acNode{dict: -1, out: -1, depth: a.nodes[cur].depth + 1})
			if a.nodes[cur].next == nil {
				a.nodes[cur].next = make(map[rune]int32, 2)
			}
			a.nodes[cur].next[r] = nxt
		}
		cur = nxt
	}
	a.nodes[cur].out = int32(literal)
}

// build computes fail and dictionary links breadth first.
func (a *automaton) build() {
	queue := make([]int32, 0, len(a.nodes))
	for _, child := range a.nodes[0].next {
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for r, child := range a.nodes[cur].next {
			f := a.nodes[cur].fail
			for {
				if nxt, ok := a.nodes[f].next[r]; ok {
					a.nodes[child].fail = nxt
					break
				}
				if f == 0 {
					a.nodes[child].fail = 0
					break
				}
				f = a.nodes[f].fail
			}
			fail := a.nodes[child].fail
			if a.nodes[fail].out >= 0 {
				a.nodes[child].dict = fail
			} else {
				a.nodes[child].dict = a.nodes[fail].dict
			}
			queue = append(queue, child)
		}
	}
}

func (a *automaton) step(state int32, r rune) int32 {
	for {
		if nxt, ok := a.nodes[state].next[r]; ok {
			return nxt
		}
		if state == 0 {
			return 0
		}
		state = a.nodes[state].fail
	}
}

// scan reports every literal occurrence in text, overlapping ones included,
// as (start, end, literal) with end exclusive.
func (a *automaton) scan(text []rune, fn func(start, end, literal int)) {
	if len(a.nodes) <= 1 {
		return
	}
	state := int32(0)
	for i, r := range text {
		state = a.step(state, r)
		for n := state; n > 0; n = a.nodes[n].dict {
			if node := &a.nodes[n]; node.out >= 0 {
				fn(i+1-int(node.depth), i+1, int(node.out))
			}
		}
	}
}
