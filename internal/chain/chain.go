package chain

import "sort"

// ============================================================================
// RECONSTRUCCIÓN DE SECUENCIAS ENLAZADAS
// ============================================================================
// Las secuencias de paraderos y de puntos de polilínea se almacenan como
// filas con punteros prev/next (lista doblemente enlazada por filas).
// Este paquete es la ÚNICA implementación del recorrido y se reutiliza
// para ambos casos.
//
// Política de integridad: una cadena rota (sin cabeza, ciclo, bifurcación
// o filas huérfanas) NUNCA es un error. Los datos de referencia los editan
// humanos; el sistema degrada a un orden determinista (id ascendente) en
// lugar de fallar.

// OnFallback, si está definido, se invoca cada vez que una cadena rota
// degrada a orden por id. Lo usa el colector de métricas.
var OnFallback func()

// Linked es el contrato mínimo de un ítem encadenable
type Linked interface {
	ChainID() int64
	PrevID() *int64
	NextID() *int64
}

// Reconstruct ordena un conjunto de ítems recorriendo la cadena desde la
// cabeza (PrevID == nil) vía NextID. Si el recorrido no visita cada ítem
// exactamente una vez, retorna todos los ítems ordenados por id.
func Reconstruct[T Linked](items []T) []T {
	if len(items) == 0 {
		return []T{}
	}

	byID := make(map[int64]T, len(items))
	var head *T
	headCount := 0

	for i := range items {
		it := items[i]
		byID[it.ChainID()] = it
		if it.PrevID() == nil {
			headCount++
			head = &items[i]
		}
	}

	// Cabeza ausente o duplicada: cadena rota
	if headCount != 1 {
		return sortByID(items)
	}

	ordered := make([]T, 0, len(items))
	visited := make(map[int64]bool, len(items))

	current := *head
	for {
		id := current.ChainID()
		if visited[id] {
			// Ciclo detectado
			return sortByID(items)
		}
		visited[id] = true
		ordered = append(ordered, current)

		next := current.NextID()
		if next == nil {
			break
		}

		nextItem, ok := byID[*next]
		if !ok {
			// NextID apunta fuera del conjunto
			return sortByID(items)
		}
		current = nextItem
	}

	// Huérfanos: el recorrido no alcanzó todos los ítems
	if len(ordered) != len(items) {
		return sortByID(items)
	}

	return ordered
}

// sortByID es el fallback determinista ante cualquier anomalía
func sortByID[T Linked](items []T) []T {
	if OnFallback != nil {
		OnFallback()
	}
	out := make([]T, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ChainID() < out[j].ChainID()
	})
	return out
}
