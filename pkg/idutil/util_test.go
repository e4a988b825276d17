package idutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextSequence_Increasing(t *testing.T) {
	prev := NextSequence()
	for i := 0; i < 1000; i++ {
		next := NextSequence()
		require.Greater(t, next, prev)
		prev = next
	}
}
