package consul

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
)

// MaxObjectSize stays below the 512KB Consul KV value limit.
const MaxObjectSize = 500 * 1024

// ConsulBackend provides object storage on the HashiCorp Consul KV store.
//
// Architecture:
// - Files are stored directly in Consul KV with their key as the path
// - Directories are stored as empty marker entries whose key ends with "/"
// - The modification time in milliseconds is kept in the entry flags
// - Prefix is configurable (default: "/")
//
// Limitations:
// - Consul KV has a 512KB limit per value
// - Best suited for small computers such as turtles or configuration disks
type ConsulBackend struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	// Configuration
	config *ConsulBackendConfig
}

// ConsulBackendConfig contains configuration options for the Consul backend
type ConsulBackendConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string `yaml:"address"`

	// Token for Consul ACL authentication (optional)
	Token string `yaml:"token"`

	// Datacenter to use (optional)
	Datacenter string `yaml:"datacenter"`

	// Namespace for Consul Enterprise (optional)
	Namespace string `yaml:"namespace"`

	// Prefix for all keys in Consul KV (default: "/")
	// This allows storing several computers in one cluster
	Prefix string `yaml:"prefix"`
}

// NewConsulBackend creates a new Consul-backed object storage backend
func NewConsulBackend(config *ConsulBackendConfig) (*ConsulBackend, error) {
	if config == nil {
		config = &ConsulBackendConfig{}
	}

	// Set defaults
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}

	if config.Prefix == "" {
		config.Prefix = "/"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}
	if config.Namespace != "" {
		clientConfig.Namespace = config.Namespace
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulBackend{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the identifier name defined for this backend
func (*ConsulBackend) Name() string {
	return "consul"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend
func (cb *ConsulBackend) Open(ctx context.Context) error {
	// Fail early if the agent cannot be reached
	_, err := cb.client.Status().Leader()
	return err
}

// Close is part of the lifecycle behaviour and gets called when closing this backend
func (cb *ConsulBackend) Close(ctx context.Context) error {
	// Nothing to clean up - Consul client is stateless
	return nil
}

// buildKey constructs the full Consul KV key from the object key
func (cb *ConsulBackend) buildKey(key string) string {
	key = strings.TrimPrefix(key, "/")

	// Handle "/" prefix specially - it means no prefix, just use the key
	if cb.config.Prefix == "/" {
		return key
	}

	// For other prefixes, ensure they end with /
	prefix := cb.config.Prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + key
}

// dirKey returns the marker key of a directory, which doubles as the
// prefix of all its children. The root has no marker.
func (cb *ConsulBackend) dirKey(key string) string {
	full := cb.buildKey(key)
	if full == "" || strings.HasSuffix(full, "/") {
		return full
	}
	return full + "/"
}

// childName turns a key returned by a separator listing into a direct child name.
func childName(prefix, full string) string {
	return strings.TrimSuffix(strings.TrimPrefix(full, prefix), "/")
}
