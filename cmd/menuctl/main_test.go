package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--catalog", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParsePrintsCart(t *testing.T) {
	out, err := run(t, "", "parse", "quiero", "2 cafés americanos y un croissant")
	require.NoError(t, err)
	assert.Contains(t, out, "2 x Café Americano")
	assert.Contains(t, out, "1 x Croissant")
	assert.Contains(t, out, "Subtotal")
}

func TestParseReportsNothingRecognized(t *testing.T) {
	out, err := run(t, "", "parse", "hola buenas tardes")
	require.NoError(t, err)
	assert.Contains(t, out, "no products recognized")
}

func TestParseJSON(t *testing.T) {
	out, err := run(t, "", "parse", "--json", "un capuchino")
	require.NoError(t, err)
	assert.Contains(t, out, `"quantity": 1`)
}

func TestUnknownBranch(t *testing.T) {
	_, err := run(t, "", "parse", "--branch", "nope", "un café")
	require.Error(t, err)
}

func TestMenuPrintsBranchMenu(t *testing.T) {
	out, err := run(t, "", "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "Cafetería Centro")
}

func TestChatLoop(t *testing.T) {
	out, err := run(t, "hola\n\nquiero 2 cafés\nsalir\nun croissant\n", "chat", "--sender", "5550001")
	require.NoError(t, err)
	assert.Contains(t, out, "2 x Café")
	assert.Equal(t, 4, strings.Count(out, "> "), "blank lines prompt again and input after salir is ignored")
}
