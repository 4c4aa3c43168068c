//go:build unix && !linux

package rtkit

import "github.com/smazurov/soundnode/internal/dbuswrap"

// Acquire always fails; RealtimeKit is Linux only.
func Acquire(*dbuswrap.API, int) (int, error) {
	return 0, ErrUnsupported
}
