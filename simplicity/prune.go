package simplicity

// Prune executes the program in the given environment, records which
// branch of every case node was taken, and rebuilds the graph with
// untaken branches replaced by their commitment hash. The transform is
// deterministic in (graph, environment) and idempotent; the Merkle
// root is unchanged because the case family hashes a hidden branch by
// its stored commitment.
//
// Pruning fails if execution fails: a program that cannot run in the
// environment has no meaningful pruned form.
func (r *Redeem) Prune(env *Environ) (*Redeem, error) {
	trace := make(map[NodeID]uint8)
	if _, err := r.run(env, trace); err != nil {
		return nil, err
	}
	p := &pruner{
		src:   r.nodes,
		cmrs:  merkleRoots(r.nodes),
		trace: trace,
		dedup: make(map[string]NodeID),
		memo:  make(map[NodeID]NodeID),
	}
	root := p.copy(r.root)
	out := &Redeem{nodes: p.out, root: root}
	out.cmr = merkleRoots(p.out)[root]
	return out, nil
}

type pruner struct {
	src   []node
	out   []node
	cmrs  [][32]byte
	trace map[NodeID]uint8
	dedup map[string]NodeID
	memo  map[NodeID]NodeID
}

func (p *pruner) intern(n node) NodeID {
	k := nodeKey(&n)
	if id, ok := p.dedup[k]; ok {
		return id
	}
	id := NodeID(len(p.out))
	p.out = append(p.out, n)
	p.dedup[k] = id
	return id
}

func (p *pruner) copy(id NodeID) NodeID {
	if to, ok := p.memo[id]; ok {
		return to
	}
	n := p.src[id] // copies the node
	if n.op == OpCase {
		switch p.trace[id] {
		case tookLeft:
			n.op = OpAssertL
			n.hidden = p.cmrs[n.y]
			n.hasHid = true
			n.y = NoNode
		case tookRight:
			n.op = OpAssertR
			n.hidden = p.cmrs[n.x]
			n.hasHid = true
			n.x = n.y
			n.y = NoNode
		}
		// A case that took both branches, or that was never reached
		// from an executed region, keeps both children.
	}
	if n.x != NoNode {
		n.x = p.copy(n.x)
	}
	if n.y != NoNode {
		n.y = p.copy(n.y)
	}
	to := p.intern(n)
	p.memo[id] = to
	return to
}
