package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"

	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
		{"224.0.0.1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicAddress(netip.MustParseAddr(tt.addr)), tt.addr)
	}
}

func TestResolve_RefusesLoopbackByDefault(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(articlePage(5)))
	}))
	t.Cleanup(server.Close)

	_, err := NewExtractor(domain.BackendModeLive, nil).Resolve(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrForbiddenAddress)
	assert.Zero(t, hits.Load())

	m, err := NewExtractor(domain.BackendModeLive, nil, WithHTTPClient(server.Client())).
		Resolve(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, m.Content, "First Battle of Panipat")
}

func TestRejectNonPublic(t *testing.T) {
	t.Parallel()

	err := rejectNonPublic("tcp", "169.254.169.254:80", nil)
	assert.ErrorIs(t, err, ErrForbiddenAddress)
	assert.NoError(t, rejectNonPublic("tcp", "93.184.216.34:443", nil))
	assert.ErrorIs(t, rejectNonPublic("tcp", "not-an-address", nil), ErrForbiddenAddress)
}
