package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, doc{Name: "a", Count: 2}))

	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"count\": 2\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalError(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]any{"ch": make(chan int)})

	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"message":"error marshaling output"`)
}

func TestFileReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","count":3}`), 0o644))

	fr := &FileReader[doc]{fileFlagValue: path}
	got, err := fr.Read()

	require.NoError(t, err)
	assert.Equal(t, doc{Name: "x", Count: 3}, got)
}

func TestFileReader_Stdin(t *testing.T) {
	fr := &FileReader[doc]{Stdin: strings.NewReader(`{"name":"piped"}`)}
	got, err := fr.Read()

	require.NoError(t, err)
	assert.Equal(t, "piped", got.Name)
}

func TestFileReader_Errors(t *testing.T) {
	_, err := (&FileReader[doc]{fileFlagValue: filepath.Join(t.TempDir(), "missing.json")}).Read()
	assert.ErrorContains(t, err, "open file")

	_, err = (&FileReader[doc]{Stdin: strings.NewReader(`{"unknown":1}`)}).Read()
	assert.ErrorContains(t, err, "decode JSON")

	_, err = (&FileReader[doc]{Stdin: strings.NewReader(`not json`)}).Read()
	assert.ErrorContains(t, err, "decode JSON")
}
