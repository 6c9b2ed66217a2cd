package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miirender/internal/view"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "localhost:12346", c.Backend.Addr)
	assert.Equal(t, "apply", c.Backend.BodyScale)
	assert.Equal(t, ":5000", c.Gateway.Addr)
	assert.Equal(t, 2*time.Second, c.Gateway.DialTimeout)
	assert.Equal(t, 20, c.Gateway.MaxInstances)
	assert.True(t, c.Presets.Watch)
	assert.Equal(t, "sqlite", c.NNID.Driver)
	assert.Empty(t, c.NNID.DSN)

	f, err := c.Backend.ScaleFormula()
	require.NoError(t, err)
	assert.Equal(t, view.ScaleApply, f)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miirender.yaml")
	yaml := `backend:
  body_scale: limit
gateway:
  upstream: render:9000
  read_timeout: 5s
  max_width: 2048
presets:
  path: /etc/presets.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("MIIRENDER_GATEWAY_MAX_WIDTH", "1024")

	c, err := Load(viper.New(), path)
	require.NoError(t, err)

	f, err := c.Backend.ScaleFormula()
	require.NoError(t, err)
	assert.Equal(t, view.ScaleLimit, f)
	assert.Equal(t, "render:9000", c.Gateway.Upstream)
	assert.Equal(t, 5*time.Second, c.Gateway.ReadTimeout)
	assert.Equal(t, 1024, c.Gateway.MaxWidth, "environment wins over file")
	assert.Equal(t, "/etc/presets.yaml", c.Presets.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	v.Set("backend.body_scale", "stretch")
	v.Set("gateway.max_instances", 0)
	_, err := Load(v, "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "stretch")
	assert.ErrorContains(t, err, "max_instances")
}

func TestValidate_MaxWidthFitsImageHeader(t *testing.T) {
	v := viper.New()
	v.Set("gateway.max_width", 24576)
	_, err := Load(v, "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "row limit")

	v = viper.New()
	v.Set("gateway.max_width", 24575)
	c, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 24575, c.Gateway.MaxWidth)
}
