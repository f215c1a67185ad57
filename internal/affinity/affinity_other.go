//go:build !linux

package affinity

import "runtime"

const supported = false

func setAffinity(cpu int) error {
	return ErrUnsupported
}

func available() ([]int, error) {
	cpus := make([]int, runtime.NumCPU())
	for i := range cpus {
		cpus[i] = i
	}
	return cpus, nil
}
