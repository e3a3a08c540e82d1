package makamail

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one task runs.
	MinWorkers = 1

	// MaxWorkers caps concurrent ImageMagick child processes.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for the tool subprocesses themselves.
	cpuDivisor = 2
)

// ResolveWorkers determines a worker bound for the coordinator.
// Priority: explicit value > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
