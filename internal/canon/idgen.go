package canon

import (
	"fmt"
	"strconv"
	"time"
)

// Generator supplies ids for entries the author left unnamed. It is passed
// explicitly into Canonicalize so compilations stay isolated: tests pin the
// seed for reproducible output, and parallel compilations each get their
// own generator instead of contending on ambient state.
//
// A Generator is not safe for concurrent use; give each compilation its own.
type Generator struct {
	seed    int64
	counter int64
}

// NewGenerator returns a generator seeded from the wall clock.
func NewGenerator() *Generator {
	return NewGeneratorAt(time.Now().UnixMilli())
}

// NewGeneratorAt returns a generator with a fixed timestamp seed. Intended
// for tests that need byte-identical ids across runs.
func NewGeneratorAt(seed int64) *Generator {
	return &Generator{seed: seed}
}

// NextID returns the next generated id in the form
// <prefix>_<timestampBase36>_<counterBase36>. The counter is monotonic and
// never reset for the life of the generator.
func (g *Generator) NextID(prefix string) string {
	n := g.counter
	g.counter++
	return fmt.Sprintf("%s_%s_%s", prefix,
		strconv.FormatInt(g.seed, 36),
		strconv.FormatInt(n, 36))
}
