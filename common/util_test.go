//go:build unit
// +build unit

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TODO use TDT
func TestValidAddressWrongHost(t *testing.T) {
	host := "hogehoge^^^-server.com"
	port := "23413"
	address, err := ValidAddress(host, port)

	assert.EqualError(t, err, fmt.Sprintf("%s is an invalid host name", host))
	assert.Equal(t, address, "")
}
func TestValidAddressWrongPort(t *testing.T) {
	host := "hogehoge-server.com"
	port := "-23413"
	address, err := ValidAddress(host, port)

	assert.EqualError(t, err, fmt.Sprintf("%s is an invalid port number", port))
	assert.Equal(t, address, "")
}

func TestValidAddressWrongRangePort(t *testing.T) {
	host := "hogehoge-server.com"
	port := "23413431243214"
	address, err := ValidAddress(host, port)

	assert.EqualError(t, err, fmt.Sprintf("%s is not a port number within the allowed range", port))
	assert.Equal(t, address, "")
}

func TestValidAddress(t *testing.T) {
	address, err := ValidAddress("localhost", "5000")
	assert.Nil(t, err)
	assert.Equal(t, "localhost:5000", address)
}

func TestReadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setting.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[qvm]\nnum_qubits = 4\n"), 0o644))

	content, err := ReadSettingsFile(path)
	assert.Nil(t, err)
	assert.Contains(t, content, "num_qubits = 4")

	_, err = ReadSettingsFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestIsDirWritable(t *testing.T) {
	assert.NoError(t, IsDirWritable(t.TempDir()))
	assert.Error(t, IsDirWritable(filepath.Join(t.TempDir(), "nope")))
}
