package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasConvertAndServeSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["convert"])
	assert.True(t, names["serve"])
}

func TestConvertCmd_FlagDefaults(t *testing.T) {
	cmd := newConvertCmd()
	output, err := cmd.Flags().GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "./output", output)

	prefix, err := cmd.Flags().GetString("bundle-prefix")
	require.NoError(t, err)
	assert.Equal(t, "http://library/content/myzim/", prefix)
}

func TestConvertCmd_RequiresWarcFlag(t *testing.T) {
	cmd := newConvertCmd()
	err := runConvert(cmd, nil)
	assert.Error(t, err)
}

func TestServeCmd_FlagDefaults(t *testing.T) {
	cmd := newServeCmd()
	dir, err := cmd.Flags().GetString("dir")
	require.NoError(t, err)
	assert.Equal(t, "./output", dir)

	addr, err := cmd.Flags().GetString("addr")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)
}
