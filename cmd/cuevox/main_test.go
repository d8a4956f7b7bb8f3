package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeConfig = "../../examples/home/cuevox.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", homeConfig}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_HomeExample(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		out, err := execute(t, "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "8 rules are valid!")
	})

	t.Run("interpret", func(t *testing.T) {
		out, err := execute(t, "interpret", "Turn on the floor lamp")
		require.NoError(t, err)
		assert.Contains(t, out, "ok [rule 2")
		assert.Contains(t, out, "LivingRoom_Lamp")

		out, err = execute(t, "interpret", "open", "the", "shutter")
		require.NoError(t, err)
		assert.Contains(t, out, `"open shutter"`)
		assert.Contains(t, out, "LivingRoom_Shutter")

		out, err = execute(t, "interpret", "play music on the radio")
		require.NoError(t, err)
		assert.Contains(t, out, "Radio")
	})

	t.Run("interpret unhandled", func(t *testing.T) {
		_, err := execute(t, "interpret", "make me a sandwich")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "was not handled")
	})

	t.Run("graph", func(t *testing.T) {
		out, err := execute(t, "graph", "-u", "put the shutter down")
		require.NoError(t, err)
		assert.Contains(t, out, "graph TD")
		assert.Contains(t, out, "class r3 current;")
	})

	t.Run("version", func(t *testing.T) {
		out, err := execute(t, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "cuevox version")
	})
}
