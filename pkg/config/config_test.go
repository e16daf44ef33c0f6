package config_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/csvdash/pkg/config"
	"github.com/MacroPower/csvdash/pkg/dataset"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := config.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, ":8501", c.Addr)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, dataset.DefaultOptions(), c.Options())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check func(t *testing.T, c *config.Config)
		err   error
		input string
	}{
		"empty": {
			input: "",
			check: func(t *testing.T, c *config.Config) {
				t.Helper()

				assert.Equal(t, config.Default(), c)
			},
		},
		"overrides": {
			input: strings.Join([]string{
				"data_dir: /srv/csv",
				"delimiter: ';'",
				"session_ttl: 5m",
				"default_top_n: 15",
				"max_file_size: 1024",
			}, "\n"),
			check: func(t *testing.T, c *config.Config) {
				t.Helper()

				assert.Equal(t, "/srv/csv", c.DataDir)
				assert.Equal(t, ":8501", c.Addr)
				assert.Equal(t, 5*time.Minute, c.SessionTTL)
				assert.Equal(t, 15, c.DefaultTopN)
				assert.Equal(t, ';', c.Options().Comma)
				assert.Equal(t, int64(1024), c.Options().MaxSize)
			},
		},
		"unknown field": {
			input: "colour: blue",
			err:   config.ErrReadConfig,
		},
		"bad duration": {
			input: "session_ttl: soon",
			err:   config.ErrReadConfig,
		},
		"long delimiter": {
			input: "delimiter: ';;'",
			err:   config.ErrInvalidConfig,
		},
		"quote delimiter": {
			input: `delimiter: '"'`,
			err:   config.ErrInvalidConfig,
		},
		"top n out of range": {
			input: "default_top_n: 31",
			err:   config.ErrInvalidConfig,
		},
		"no workers": {
			input: "load_workers: 0",
			err:   config.ErrInvalidConfig,
		},
		"zero ttl": {
			input: "session_ttl: 0s",
			err:   config.ErrInvalidConfig,
		},
		"empty data dir": {
			input: `data_dir: ""`,
			err:   config.ErrInvalidConfig,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := config.Decode(strings.NewReader(tc.input))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			tc.check(t, c)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "csvdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: 127.0.0.1:9000\n"), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", c.Addr)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrReadConfig)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: fromenv\n"), 0o600))

	t.Setenv(config.EnvFile, path)

	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "fromenv", c.DataDir)

	t.Setenv(config.EnvFile, "")

	c, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	want := config.Default()
	want.SessionTTL = 90 * time.Second

	buf := &bytes.Buffer{}
	require.NoError(t, want.Encode(buf))
	assert.Contains(t, buf.String(), "session_ttl: 1m30s")

	got, err := config.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(config.Schema())
	require.NoError(t, err)

	var s struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(b, &s))

	assert.Equal(t, "string", s.Properties["session_ttl"].Type)
	assert.Equal(t, "integer", s.Properties["default_top_n"].Type)
	assert.Contains(t, s.Properties, "data_dir")
}
