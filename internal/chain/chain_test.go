package chain

import (
	"math/rand"
	"testing"
)

// item de prueba con la misma forma que RouteStop / RoutePoint
type testItem struct {
	id   int64
	prev *int64
	next *int64
}

func (t testItem) ChainID() int64 { return t.id }
func (t testItem) PrevID() *int64 { return t.prev }
func (t testItem) NextID() *int64 { return t.next }

func ptr(v int64) *int64 { return &v }

// buildChain crea una cadena bien formada id[0] -> id[1] -> ... -> id[n-1]
func buildChain(ids ...int64) []testItem {
	items := make([]testItem, len(ids))
	for i, id := range ids {
		it := testItem{id: id}
		if i > 0 {
			it.prev = ptr(ids[i-1])
		}
		if i < len(ids)-1 {
			it.next = ptr(ids[i+1])
		}
		items[i] = it
	}
	return items
}

func assertOrder(t *testing.T, got []testItem, want ...int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].id != id {
			t.Errorf("Position %d: expected id %d, got %d", i, id, got[i].id)
		}
	}
}

func TestReconstructWellFormed(t *testing.T) {
	// Orden de la cadena: 30 -> 10 -> 20 (distinto del orden por id)
	items := buildChain(30, 10, 20)

	assertOrder(t, Reconstruct(items), 30, 10, 20)
}

func TestReconstructPermutationInvariant(t *testing.T) {
	items := buildChain(7, 3, 9, 1, 5)
	want := []int64{7, 3, 9, 1, 5}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]testItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		assertOrder(t, Reconstruct(shuffled), want...)
	}
}

func TestReconstructEmpty(t *testing.T) {
	got := Reconstruct([]testItem{})
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %d items", len(got))
	}
}

func TestReconstructSingle(t *testing.T) {
	items := []testItem{{id: 42}}
	assertOrder(t, Reconstruct(items), 42)
}

func TestReconstructMissingHead(t *testing.T) {
	// Todos los ítems tienen prev: no hay cabeza -> fallback por id
	items := []testItem{
		{id: 3, prev: ptr(2)},
		{id: 1, prev: ptr(3), next: ptr(2)},
		{id: 2, prev: ptr(1), next: ptr(3)},
	}

	assertOrder(t, Reconstruct(items), 1, 2, 3)
}

func TestReconstructCycle(t *testing.T) {
	// 1 -> 2 -> 3 -> 2 (next de 3 vuelve a 2)
	items := []testItem{
		{id: 1, next: ptr(2)},
		{id: 2, prev: ptr(1), next: ptr(3)},
		{id: 3, prev: ptr(2), next: ptr(2)},
	}

	assertOrder(t, Reconstruct(items), 1, 2, 3)
}

func TestReconstructOrphans(t *testing.T) {
	// La cadena 1 -> 2 no alcanza al huérfano 9 -> fallback por id
	items := []testItem{
		{id: 2, prev: ptr(1)},
		{id: 9, prev: ptr(99), next: nil},
		{id: 1, next: ptr(2)},
	}

	// Dos ítems sin cabeza válida... 9 tiene prev, 1 es única cabeza,
	// pero el recorrido solo visita 1 y 2
	assertOrder(t, Reconstruct(items), 1, 2, 9)
}

func TestReconstructDanglingNext(t *testing.T) {
	// next apunta a un id que no existe en el conjunto
	items := []testItem{
		{id: 5, next: ptr(77)},
		{id: 8, prev: ptr(5)},
	}

	assertOrder(t, Reconstruct(items), 5, 8)
}

func TestReconstructDoesNotMutateInput(t *testing.T) {
	items := []testItem{
		{id: 3, prev: ptr(2)},
		{id: 2, prev: ptr(1), next: ptr(3)},
		{id: 1, next: ptr(2)},
	}

	_ = Reconstruct(items)

	if items[0].id != 3 || items[1].id != 2 || items[2].id != 1 {
		t.Error("Expected input slice to remain untouched")
	}
}

func BenchmarkReconstruct(b *testing.B) {
	ids := make([]int64, 200)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	items := buildChain(ids...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Reconstruct(items)
	}
}
