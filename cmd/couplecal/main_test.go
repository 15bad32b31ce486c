package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintUpcoming(t *testing.T) {
	var buf bytes.Buffer
	printUpcoming(&buf, time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "2025-12-31 Wed  New Year's Eve"), lines[0])
	assert.Contains(t, lines[0], "(in 1 days)")
	assert.True(t, strings.HasPrefix(lines[1], "2026-01-01 Thu  New Year's Day"), lines[1])
}

func TestVerifyFeed(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, verifyFeed(now, 3, time.UTC))
}
