package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadListingsYAML(t *testing.T) {
	path := writeTemp(t, "listings.yaml", `
- id: l-1
  address: 14 Melbourne St
  suburb: Kensington
  district: Dunedin City
  region: Otago
  asking_price: 450000
  bedrooms: 3
  land_area: 650
- address: 3 Calder Ave
  suburb: Mosgiel
  region: Otago
  asking_price: 380000
  bedrooms: 2
`)

	listings, err := readListings(path)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "l-1", listings[0].ID)
	assert.Equal(t, "14 Melbourne St", listings[0].Address)
	assert.InDelta(t, 450_000, listings[0].AskingPrice, 0.01)
	assert.Equal(t, 3, listings[0].Bedrooms)
	assert.Empty(t, listings[1].ID, "missing IDs are assigned at save time")
}

func TestReadListingsJSON(t *testing.T) {
	path := writeTemp(t, "listings.json",
		`[{"id":"j-1","address":"5 Surrey St","suburb":"Caversham","region":"Otago","asking_price":395000}]`)

	listings, err := readListings(path)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "j-1", listings[0].ID)
}

func TestReadListingsEmpty(t *testing.T) {
	path := writeTemp(t, "empty.yaml", "[]\n")
	_, err := readListings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no listings")
}

func TestReadListingsMissingFile(t *testing.T) {
	_, err := readListings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
