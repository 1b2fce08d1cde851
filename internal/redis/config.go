package redis

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const DefaultPort = 6380

// Source names the discovery path that produced a RedisConfig.
type Source string

const (
	SourceVault           Source = "vault"
	SourceEnv             Source = "env"
	SourcePlatformBinding Source = "platform-binding"
	SourceEnvDiscrete     Source = "env-discrete"
	SourceNone            Source = "none"
)

// Mode is the way a client gets constructed from a RedisConfig.
type Mode int

const (
	ModeEmbedded Mode = iota
	ModeConnectionString
	ModePassword
	ModeHost
)

func (m Mode) String() string {
	switch m {
	case ModeConnectionString:
		return "connection-string"
	case ModePassword:
		return "password"
	case ModeHost:
		return "host"
	default:
		return "embedded"
	}
}

type RedisConfig struct {
	// ConnectionString is a full redis:// or rediss:// URI. When set it wins
	// over every discrete field, TLSEnabled included.
	ConnectionString string

	Host       string
	Port       int
	Password   string
	Database   int
	TLSEnabled bool

	// DialTimeout is passed through to the client. Zero keeps the client default.
	DialTimeout time.Duration

	Source Source
}

// Mode picks the construction branch: connection string, then password,
// then bare host, then the embedded store.
func (c *RedisConfig) Mode() Mode {
	switch {
	case c.ConnectionString != "":
		return ModeConnectionString
	case c.Password != "":
		return ModePassword
	case c.Host != "":
		return ModeHost
	default:
		return ModeEmbedded
	}
}

func (c *RedisConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// DisplayAddr is Addr for the host and password modes, and a placeholder
// otherwise.
func (c *RedisConfig) DisplayAddr() string {
	switch c.Mode() {
	case ModeConnectionString:
		return "(from connection string)"
	case ModeEmbedded:
		return "(embedded)"
	default:
		return c.Addr()
	}
}

// UsesTLS reports whether the discrete options enable TLS. Only the password
// mode honours TLSEnabled; a connection string carries its own scheme.
func (c *RedisConfig) UsesTLS() bool {
	return c.Mode() == ModePassword && c.TLSEnabled
}

// String never includes the password or the connection string.
func (c *RedisConfig) String() string {
	return fmt.Sprintf("redis(source=%s mode=%s addr=%s tls=%t)", c.Source, c.Mode(), c.DisplayAddr(), c.UsesTLS())
}
