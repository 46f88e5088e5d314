// Package testutil provides fixture builders shared by the package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gengc/heap"
)

// NewSpace adds a local space to the registry and fails the test if the
// budget refuses it.
func NewSpace(t *testing.T, reg *heap.Registry, kind heap.Kind, words heap.Words) *heap.Space {
	t.Helper()
	s, ok := reg.NewLocalSpace(words, kind)
	require.True(t, ok, "registry refused a %d-word %s space", words, kind)
	return s
}

// Fill allocates words of throwaway data in the space, lowering the frontier.
func Fill(t *testing.T, s *heap.Space, words heap.Words) {
	t.Helper()
	_, ok := s.Allocate(words)
	require.True(t, ok, "space %d cannot hold %d more words", s.ID, words)
}
