package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/certprep/internal/session"
)

func TestReachableMatchesRule(t *testing.T) {
	for _, enrolled := range []bool{false, true} {
		p := session.AccessPolicy{Enrolled: enrolled, FreeThreshold: 10}
		for o := 1; o <= 60; o++ {
			assert.Equal(t, enrolled || o <= 10, p.Reachable(o), "enrolled=%v ordinal=%d", enrolled, o)
		}
		assert.False(t, p.Reachable(0))
	}
}

func TestCeiling(t *testing.T) {
	cases := []struct {
		enrolled bool
		total    int
		want     int
	}{
		{true, 25, 25},
		{false, 25, 10},
		{false, 7, 7},
		{true, 0, 0},
	}
	for _, tc := range cases {
		p := session.AccessPolicy{Enrolled: tc.enrolled, FreeThreshold: session.DefaultFreeThreshold}
		assert.Equal(t, tc.want, p.Ceiling(tc.total), "enrolled=%v total=%d", tc.enrolled, tc.total)
	}
}
