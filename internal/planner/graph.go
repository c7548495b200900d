package planner

import "container/heap"

// ============================================================================
// GRAFO PONDERADO RUTA/PARADERO
// ============================================================================
// El grafo se construye fresco por request a partir del snapshot de
// rutas ya proyectadas; a escala de ciudad (cientos de nodos) no se
// justifica un índice persistente. Nodo = par (ruta, paradero), más dos
// nodos virtuales para el conjunto de paraderos candidatos de origen y
// destino.

// Ids de ruta reservados para los nodos virtuales
const (
	virtualOrigin int64 = -1
	virtualDest   int64 = -2
)

type nodeKey struct {
	RouteID int64
	StopID  int64
}

type edge struct {
	From      nodeKey
	To        nodeKey
	WeightMin float64
	Km        float64
	RouteID   int64 // 0 en aristas de transbordo y virtuales
	Transfer  bool
	removed   bool
}

type graph struct {
	adj map[nodeKey][]*edge
}

func newGraph() *graph {
	return &graph{adj: make(map[nodeKey][]*edge)}
}

func (g *graph) addEdge(from, to nodeKey, weightMin, km float64, routeID int64, transfer bool) *edge {
	e := &edge{From: from, To: to, WeightMin: weightMin, Km: km, RouteID: routeID, Transfer: transfer}
	g.adj[from] = append(g.adj[from], e)
	return e
}

// ============================================================================
// DIJKSTRA con container/heap
// ============================================================================

type pqItem struct {
	node  nodeKey
	dist  float64
	index int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *priorityQueue) Push(x interface{}) { it := x.(*pqItem); it.index = len(*pq); *pq = append(*pq, it) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return it
}

// shortestPath corre Dijkstra desde source hasta target ignorando
// aristas removidas. Retorna la secuencia de aristas del camino o nil
// si el destino es inalcanzable.
func (g *graph) shortestPath(source, target nodeKey) []*edge {
	dist := make(map[nodeKey]float64)
	prev := make(map[nodeKey]*edge)
	visited := make(map[nodeKey]bool)

	pq := priorityQueue{{node: source, dist: 0}}
	heap.Init(&pq)
	dist[source] = 0

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(*pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node == target {
			break
		}

		for _, e := range g.adj[cur.node] {
			if e.removed || visited[e.To] {
				continue
			}
			nd := cur.dist + e.WeightMin
			if old, ok := dist[e.To]; !ok || nd < old {
				dist[e.To] = nd
				prev[e.To] = e
				heap.Push(&pq, &pqItem{node: e.To, dist: nd})
			}
		}
	}

	if !visited[target] {
		return nil
	}

	// Reconstruir el camino hacia atrás
	var path []*edge
	for at := target; at != source; {
		e := prev[at]
		if e == nil {
			return nil
		}
		path = append(path, e)
		at = e.From
	}

	// Invertir
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
