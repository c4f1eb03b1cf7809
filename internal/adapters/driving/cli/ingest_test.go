package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

func TestParseContractID(t *testing.T) {
	id, err := parseContractID("42")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractID(42), id)

	for _, bad := range []string{"0", "-3", "abc", "", "1.5"} {
		_, err := parseContractID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestIngestCmd_Registered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"ingest", "backfill", "ask", "contracts", "history", "risks", "summarize", "serve", "version"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}
