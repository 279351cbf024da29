package artifact

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/models/v1/", http.FileServer(http.Dir(polyDir))))
	defer srv.Close()

	src, err := NewURLSource(srv.URL+"/models/v1", srv.Client())
	require.NoError(t, err)

	remote, err := Load(src)
	require.NoError(t, err)
	local, err := Load(NewDirSource(polyDir))
	require.NoError(t, err)

	assert.True(t, remote.UsePoly())
	assert.Equal(t, local.Columns(), remote.Columns())
	assert.Equal(t, local.Poly().NumOutputs(), remote.Poly().NumOutputs())
	assert.Equal(t, srv.URL+"/models/v1", remote.Source())
}

func TestURLSource_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src, err := NewURLSource(srv.URL, nil)
	require.NoError(t, err)
	_, _, err = src.Read(NameScaler)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewURLSource_Invalid(t *testing.T) {
	_, err := NewURLSource("ftp://example.com/models", nil)
	assert.Error(t, err)
	_, err = NewURLSource("://bad", nil)
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://models.example.com/exam"))
	assert.True(t, IsURL("HTTP://localhost:9000"))
	assert.False(t, IsURL("model_artifacts"))
	assert.False(t, IsURL("/srv/models"))
}
