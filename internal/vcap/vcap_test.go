package vcap_test

import (
	"testing"

	"github.com/hookdeck/redisconnect/internal/vcap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boundRedis = `{
  "p-redis": [
    {
      "name": "cart-cache",
      "label": "p-redis",
      "plan": "shared-vm",
      "credentials": {"host": "10.0.8.4", "port": 43915, "password": "s3cret"}
    }
  ],
  "p-mysql": []
}`

func TestParse(t *testing.T) {
	services, err := vcap.Parse(boundRedis)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-mysql", "p-redis"}, services.Labels())

	creds, found, err := services.Credentials("p-redis")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10.0.8.4", creds.Host)
	assert.Equal(t, vcap.Port(43915), creds.Port)
	assert.Equal(t, "s3cret", creds.Password)
}

func TestParse_Malformed(t *testing.T) {
	_, err := vcap.Parse(`{"p-redis": [`)
	assert.ErrorIs(t, err, vcap.ErrMalformedServices)

	services, err := vcap.Parse(`{"p-redis": [{"credentials": {"host": "h", "port": "abc"}}]}`)
	require.NoError(t, err)
	_, found, err := services.Credentials("p-redis")
	assert.True(t, found)
	assert.ErrorIs(t, err, vcap.ErrMalformedServices)
}

func TestParse_OtherBindingsAreNotDecoded(t *testing.T) {
	services, err := vcap.Parse(`{
  "user-provided": [{"credentials": {"password": 12345, "port": "8443/tcp"}}],
  "p-mysql": [{"credentials": {"port": 3306.0}}],
  "p-redis": [{"credentials": {"host": "10.0.8.4", "port": 43915, "password": "s3cret"}}]
}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-mysql", "p-redis", "user-provided"}, services.Labels())

	creds, found, err := services.Credentials("p-redis")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10.0.8.4", creds.Host)
	assert.Equal(t, vcap.Port(43915), creds.Port)
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantFound bool
		wantErr   error
		wantPort  vcap.Port
	}{
		{
			name:      "label not bound",
			raw:       `{"p-mysql": [{"credentials": {"host": "db"}}]}`,
			wantFound: false,
		},
		{
			name:      "no instances",
			raw:       `{"p-redis": []}`,
			wantFound: true,
			wantErr:   vcap.ErrMissingCredentials,
		},
		{
			name:      "no host",
			raw:       `{"p-redis": [{"credentials": {"password": "x"}}]}`,
			wantFound: true,
			wantPort:  0,
		},
		{
			name:      "no credentials",
			raw:       `{"p-redis": [{"name": "cart-cache"}]}`,
			wantFound: true,
			wantPort:  0,
		},
		{
			name:      "port as string",
			raw:       `{"p-redis": [{"credentials": {"host": "h", "port": "6390"}}]}`,
			wantFound: true,
			wantPort:  6390,
		},
		{
			name:      "port absent",
			raw:       `{"p-redis": [{"credentials": {"host": "h"}}]}`,
			wantFound: true,
			wantPort:  0,
		},
		{
			name:      "port null",
			raw:       `{"p-redis": [{"credentials": {"host": "h", "port": null}}]}`,
			wantFound: true,
			wantPort:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, err := vcap.Parse(tt.raw)
			require.NoError(t, err)

			creds, found, err := services.Credentials("p-redis")
			assert.Equal(t, tt.wantFound, found)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if found {
				assert.Equal(t, tt.wantPort, creds.Port)
			}
		})
	}
}
