package consul

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/craftos/data"
)

func (cb *ConsulBackend) query(ctx context.Context) *api.QueryOptions {
	return (&api.QueryOptions{}).WithContext(ctx)
}

func (cb *ConsulBackend) write(ctx context.Context) *api.WriteOptions {
	return (&api.WriteOptions{}).WithContext(ctx)
}

func (cb *ConsulBackend) HeadObject(ctx context.Context, key string) (*data.Attributes, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	pair, _, err := cb.kv.Get(cb.buildKey(key), cb.query(ctx))
	if err != nil {
		return nil, err
	}
	if pair != nil {
		modified := int64(pair.Flags)
		return &data.Attributes{
			Size:     int64(len(pair.Value)),
			Created:  modified,
			Modified: modified,
		}, nil
	}

	marker, _, err := cb.kv.Get(cb.dirKey(key), cb.query(ctx))
	if err != nil {
		return nil, err
	}
	if marker != nil {
		modified := int64(marker.Flags)
		return &data.Attributes{
			IsDir:    true,
			Created:  modified,
			Modified: modified,
		}, nil
	}

	// Entries written by other tools may lack a marker
	keys, _, err := cb.kv.Keys(cb.dirKey(key), "/", cb.query(ctx))
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		return &data.Attributes{IsDir: true}, nil
	}

	return nil, data.ErrNotExist
}

func (cb *ConsulBackend) ListObjects(ctx context.Context, key string) ([]string, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	prefix := cb.dirKey(key)
	keys, _, err := cb.kv.Keys(prefix, "/", cb.query(ctx))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, full := range keys {
		name := childName(prefix, full)
		if name == "" || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}

	slices.Sort(names)
	return names, nil
}

func (cb *ConsulBackend) ReadObject(ctx context.Context, key string) ([]byte, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	pair, _, err := cb.kv.Get(cb.buildKey(key), cb.query(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, data.ErrNotExist
	}

	if pair.Value == nil {
		return []byte{}, nil
	}
	return pair.Value, nil
}

func (cb *ConsulBackend) WriteObject(ctx context.Context, key string, content []byte) error {
	if len(content) > MaxObjectSize {
		return data.ErrNoSpace
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	pair := &api.KVPair{
		Key:   cb.buildKey(key),
		Flags: uint64(time.Now().UnixMilli()),
		Value: content,
	}

	_, err := cb.kv.Put(pair, cb.write(ctx))
	return err
}

func (cb *ConsulBackend) CreateDirectory(ctx context.Context, key string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	marker := cb.dirKey(key)
	existing, _, err := cb.kv.Get(marker, cb.query(ctx))
	if err != nil {
		return err
	}
	if existing != nil {
		return data.ErrExist
	}

	pair := &api.KVPair{
		Key:   marker,
		Flags: uint64(time.Now().UnixMilli()),
	}

	_, err = cb.kv.Put(pair, cb.write(ctx))
	return err
}

func (cb *ConsulBackend) DeleteObject(ctx context.Context, key string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if _, err := cb.kv.Delete(cb.buildKey(key), cb.write(ctx)); err != nil {
		return err
	}

	// Removes the marker together with every descendant
	_, err := cb.kv.DeleteTree(cb.dirKey(key), cb.write(ctx))
	return err
}

func (cb *ConsulBackend) Usage(ctx context.Context) (int64, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	pairs, _, err := cb.kv.List(cb.dirKey(""), cb.query(ctx))
	if err != nil {
		return 0, err
	}

	var used int64
	for _, pair := range pairs {
		used += int64(len(pair.Value))
	}
	return used, nil
}
