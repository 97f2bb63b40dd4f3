package game

import (
	"math/rand"
	"testing"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game/spatial"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

func benchEngine(b *testing.B, walkers, zombies int) *Engine {
	b.Helper()
	cfg := testConfig()
	cfg.Population.WalkerTarget = walkers
	cfg.Population.WalkerPoolMax = walkers + 100
	cfg.Population.ZombiePoolMax = zombies + 10
	econ := newFakeEconomy()
	econ.maxZombies = zombies
	e, err := NewEngine(cfg, econ)
	if err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < walkers; i++ {
		e.Walkers().SpawnAt(Vec(rng.Float64()*800, rng.Float64()*600))
	}
	for i := 0; i < zombies; i++ {
		e.SpawnZombie(Vec(rng.Float64()*800, rng.Float64()*600))
	}
	return e
}

// -----------------------------------------------------------------------------
// STEP BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkStep_40Walkers(b *testing.B)   { benchmarkStep(b, 40, 10) }
func BenchmarkStep_200Walkers(b *testing.B)  { benchmarkStep(b, 200, 50) }
func BenchmarkStep_1000Walkers(b *testing.B) { benchmarkStep(b, 1000, 100) }

func benchmarkStep(b *testing.B, walkers, zombies int) {
	e := benchEngine(b, walkers, zombies)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		e.step()
	}
}

// -----------------------------------------------------------------------------
// SNAPSHOT BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkSnapshot_200Walkers(b *testing.B)  { benchmarkSnapshot(b, 200) }
func BenchmarkSnapshot_1000Walkers(b *testing.B) { benchmarkSnapshot(b, 1000) }

func benchmarkSnapshot(b *testing.B, walkers int) {
	e := benchEngine(b, walkers, 10)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		e.buildSnapshot(0)
	}
}

// -----------------------------------------------------------------------------
// CULLING BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkCull_Low_1000(b *testing.B) {
	m := newTestMonitor()
	m.SetLevel(LevelLow)
	c := NewEntityCuller(config.DefaultCulling(), m, newTestRand())
	ws := scatter(1000, newTestRand(), 1600, 1200)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = Cull(c, ws, 800, 600, 0)
	}
}

// -----------------------------------------------------------------------------
// SEPARATION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkSeparation_100(b *testing.B)  { benchmarkSeparation(b, 100) }
func BenchmarkSeparation_500(b *testing.B)  { benchmarkSeparation(b, 500) }
func BenchmarkSeparation_2000(b *testing.B) { benchmarkSeparation(b, 2000) }

func benchmarkSeparation(b *testing.B, n int) {
	c := newTestCollision()
	// Clustered to maximise neighbour counts
	ws := scatter(n, newTestRand(), 400, 300)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ApplySeparation(c, ws, 60)
	}
}

// -----------------------------------------------------------------------------
// SPATIAL GRID BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkSpatialGrid_Insert(b *testing.B) {
	grid := spatial.NewSpatialGrid(800, 600, 64, 200)
	rng := newTestRand()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		grid.Clear()
		for j := 0; j < 100; j++ {
			grid.Insert(uint32(j), rng.Float64()*800, rng.Float64()*600)
		}
	}
}

func BenchmarkSpatialGrid_QueryRadius(b *testing.B) {
	grid := spatial.NewSpatialGrid(800, 600, 64, 200)
	rng := newTestRand()
	for j := 0; j < 500; j++ {
		grid.Insert(uint32(j), rng.Float64()*800, rng.Float64()*600)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = grid.QueryRadius(rng.Float64()*800, rng.Float64()*600, 50)
	}
}

// -----------------------------------------------------------------------------
// POOL BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkPool_GetRelease(b *testing.B) {
	pool, err := NewPool(func() *Walker { return &Walker{} }, resetWalker, 64, 128)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := pool.Get()
		pool.Release(w)
	}
}
