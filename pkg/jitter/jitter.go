// Package jitter добавляет случайность в интервалы отступления (backoff),
// чтобы избежать эффекта thundering herd при одновременных повторах.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	j := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(j)
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// attempt нумеруется с нуля, backoff удваивается на каждой попытке до max.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}
