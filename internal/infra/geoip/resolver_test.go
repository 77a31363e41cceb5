package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolverEmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, r.Close())
}

func TestNewResolverMissingFile(t *testing.T) {
	_, err := NewResolver(filepath.Join(t.TempDir(), "missing.mmdb"))
	require.Error(t, err)
}

func TestCountryCodeSkipsLocalAddresses(t *testing.T) {
	var r *Resolver
	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.10", "::1", "fe80::1", "::ffff:10.0.0.1"} {
		code, err := r.CountryCode(ip)
		require.NoError(t, err, ip)
		assert.Empty(t, code, ip)
	}
}

func TestCountryCodeWithoutDatabase(t *testing.T) {
	var r *Resolver
	_, err := r.CountryCode("8.8.8.8")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = r.CountryCode("not-an-ip")
	require.Error(t, err)
}
