package world

import (
	"sort"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/utils"
)

// Reverse reference map of every object in the world
type Graph struct {
	referencers map[Object][]Object
}

func BuildReferenceGraph(w *World) *Graph {
	g := &Graph{referencers: make(map[Object][]Object)}
	add := func(o Object) {
		for _, ref := range o.References() {
			g.referencers[ref] = append(g.referencers[ref], o)
		}
	}
	for _, l := range w.Levels {
		add(l)
		for _, a := range l.Actors {
			add(a)
			for _, c := range a.Components {
				add(c)
			}
		}
	}
	// materials may be shared, link each one once
	linked := make(map[*Material]bool)
	for _, l := range w.Levels {
		for _, a := range l.Actors {
			for _, c := range a.Components {
				for _, m := range c.Materials {
					if m != nil && !linked[m] {
						linked[m] = true
						add(m)
					}
				}
			}
		}
	}
	return g
}

func (g *Graph) Referencers(o Object) []Object { return g.referencers[o] }

// Objects already searched. Marked objects are never searched again.
type VisitedSet map[Object]bool

// Actors reaching target through references. Actors end the search,
// whatever references an actor is not looked at.
func (g *Graph) FindActors(target Object, visited VisitedSet) []*Actor {
	found := make([]*Actor, 0)
	var visit func(o Object)
	visit = func(o Object) {
		if visited[o] {
			return
		}
		visited[o] = true
		if a, ok := o.(*Actor); ok {
			found = append(found, a)
			return
		}
		for _, r := range g.referencers[o] {
			visit(r)
		}
	}
	visit(target)
	return found
}

type TargetResult struct {
	Target Object
	Actors []*Actor
}

// Searches actors for every target. With shareVisited set, objects
// reached from an earlier target are skipped for later ones, so later
// targets may report fewer actors than really use them; the union of
// all results is the same in both modes. step, when set, is called
// before every target is searched.
func (g *Graph) FindActorsForTargets(targets []Object, shareVisited bool, step func(target Object)) ([]*Actor, []TargetResult) {
	results := make([]TargetResult, 0, len(targets))
	all := make([]*Actor, 0)
	seen := make(map[*Actor]bool)

	visited := make(VisitedSet)
	for _, t := range targets {
		if step != nil {
			step(t)
		}
		if !shareVisited {
			visited = make(VisitedSet)
		}
		actors := g.FindActors(t, visited)
		results = append(results, TargetResult{Target: t, Actors: actors})
		for _, a := range actors {
			if !seen[a] {
				seen[a] = true
				all = append(all, a)
			}
		}
	}
	return all, results
}

// Human readable dump of the graph, objects by name
func (g *Graph) Dump() string {
	type entry struct {
		Object      string
		Referencers []string
	}
	entries := make([]entry, 0, len(g.referencers))
	for o, refs := range g.referencers {
		e := entry{Object: string(o.Kind()) + ":" + o.Name()}
		for _, r := range refs {
			e.Referencers = append(e.Referencers, string(r.Kind())+":"+r.Name())
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Object < entries[j].Object })
	return utils.SDump(entries)
}
