// Package graph maintains the code graph: file and symbol nodes plus
// import-derived directed edges between file nodes. The graph is an
// ordinary directed graph that may contain cycles; every traversal carries
// a visited set so cyclic imports terminate.
package graph

import "codeatlas/pkg/types"

// NodeKind distinguishes file nodes from symbol nodes.
type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeSymbol NodeKind = "symbol"
)

// EdgeImports is the only edge type: fileA imports fileB.
const EdgeImports = "imports"

// Node is one vertex of the code graph.
type Node struct {
	ID   string
	Kind NodeKind

	// Symbol is set for symbol nodes only.
	Symbol *types.Symbol

	// File is the owning file for symbol nodes, the file itself for file
	// nodes.
	File string
}

// Edge is a directed import relationship between two file nodes.
type Edge struct {
	From string
	To   string
	Type string
}

// Graph holds the node map and paired adjacency lists. Invariant: every
// edge endpoint references a node present in the map, and the dependencies
// and dependents lists are updated together on every insertion and removal.
type Graph struct {
	nodes         map[string]*Node
	dependencies  map[string][]string // outgoing: node -> nodes it imports
	dependents    map[string][]string // incoming: node -> nodes importing it
	symbolsByFile map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:         make(map[string]*Node),
		dependencies:  make(map[string][]string),
		dependents:    make(map[string][]string),
		symbolsByFile: make(map[string][]string),
	}
}

// AddFile inserts a file node. Inserting an existing ID is a no-op.
func (g *Graph) AddFile(path string) {
	if _, ok := g.nodes[path]; ok {
		return
	}
	g.nodes[path] = &Node{ID: path, Kind: NodeFile, File: path}
}

// AddSymbol inserts a symbol node attached to its owning file.
func (g *Graph) AddSymbol(sym types.Symbol) {
	if _, ok := g.nodes[sym.ID]; ok {
		return
	}
	s := sym
	g.nodes[sym.ID] = &Node{ID: sym.ID, Kind: NodeSymbol, Symbol: &s, File: sym.File}
	g.symbolsByFile[sym.File] = append(g.symbolsByFile[sym.File], sym.ID)
}

// AddEdge inserts a directed imports edge between two existing nodes.
// Edges to or from nodes not in the map are silently dropped: dangling
// imports are omitted, never inserted as placeholders. Duplicate edges
// collapse to one.
func (g *Graph) AddEdge(from, to string) {
	if _, ok := g.nodes[from]; !ok {
		return
	}
	if _, ok := g.nodes[to]; !ok {
		return
	}
	if contains(g.dependencies[from], to) {
		return
	}
	g.dependencies[from] = append(g.dependencies[from], to)
	g.dependents[to] = append(g.dependents[to], from)
}

// RemoveFile removes a file node, its symbol nodes, and every edge touching
// it, keeping both adjacency lists consistent.
func (g *Graph) RemoveFile(path string) {
	node, ok := g.nodes[path]
	if !ok || node.Kind != NodeFile {
		return
	}

	for _, symID := range g.symbolsByFile[path] {
		delete(g.nodes, symID)
	}
	delete(g.symbolsByFile, path)

	for _, to := range g.dependencies[path] {
		g.dependents[to] = remove(g.dependents[to], path)
	}
	delete(g.dependencies, path)

	for _, from := range g.dependents[path] {
		g.dependencies[from] = remove(g.dependencies[from], path)
	}
	delete(g.dependents, path)

	delete(g.nodes, path)
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependencies returns the file IDs the given node imports.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.dependencies[id]...)
}

// Dependents returns the file IDs importing the given node.
func (g *Graph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// SymbolsInFile returns the IDs of symbol nodes owned by a file.
func (g *Graph) SymbolsInFile(path string) []string {
	return append([]string(nil), g.symbolsByFile[path]...)
}

// Edges returns every edge in the graph.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for from, tos := range g.dependencies {
		for _, to := range tos {
			edges = append(edges, Edge{From: from, To: to, Type: EdgeImports})
		}
	}
	return edges
}

// RelatedFiles walks dependencies and dependents from the given file node,
// breadth-first, and returns every reachable file except the start. The
// visited set guarantees termination on import cycles.
func (g *Graph) RelatedFiles(start string) []string {
	if _, ok := g.nodes[start]; !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	var related []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors := make([]string, 0, len(g.dependencies[cur])+len(g.dependents[cur]))
		neighbors = append(neighbors, g.dependencies[cur]...)
		neighbors = append(neighbors, g.dependents[cur]...)

		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			visited[n] = true
			related = append(related, n)
			queue = append(queue, n)
		}
	}

	return related
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
