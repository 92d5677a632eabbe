// Package randsrc implements tensorcore's random-number contract: a
// package-level generator, reseedable from code or from the RANDSEED
// environment variable, and a generic rand[T]() sampler used by the
// tensor package's random constructor.
package randsrc

import (
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/itohio/tensorcore/buffer"
	"github.com/itohio/tensorcore/pkg/logger"
)

var (
	mu  sync.Mutex
	src *rand.Rand
)

func init() {
	Reseed(seedFromEnv())
}

func seedFromEnv() int64 {
	if s := os.Getenv("RANDSEED"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		logger.Log.Warn().Str("RANDSEED", s).Msg("randsrc: ignoring unparsable RANDSEED")
	}
	return time.Now().UnixNano()
}

// Reseed reinitialises the package generator from seed. Safe for
// concurrent use; callers needing reproducibility across goroutines
// must still serialise their own draws.
func Reseed(seed int64) {
	mu.Lock()
	defer mu.Unlock()
	src = rand.New(rand.NewSource(seed))
}

// ReseedFromEnv reinitialises the generator from RANDSEED, or from the
// current time if it is unset or unparsable.
func ReseedFromEnv() {
	Reseed(seedFromEnv())
}

// Rand draws a uniform sample appropriate to T: a float64 in [0, 1)
// for real element types, or a complex128 with independent [0, 1)
// real and imaginary parts for complex element types.
func Rand[T buffer.Number]() T {
	mu.Lock()
	defer mu.Unlock()
	var zero T
	switch any(zero).(type) {
	case complex128:
		return any(complex(src.Float64(), src.Float64())).(T)
	default:
		return any(src.Float64()).(T)
	}
}

// RandRange draws a uniform float64 in [lo, hi).
func RandRange(lo, hi float64) float64 {
	mu.Lock()
	defer mu.Unlock()
	return lo + src.Float64()*(hi-lo)
}

// RandInt draws a uniform int in [lo, hi).
func RandInt(lo, hi int) int {
	mu.Lock()
	defer mu.Unlock()
	return lo + src.Intn(hi-lo)
}
