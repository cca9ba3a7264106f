package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/agenthub-dev/agenthub/core/client"
	"github.com/agenthub-dev/agenthub/core/config"
	"github.com/agenthub-dev/agenthub/core/fsx"
	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/store"
)

// registryBackend abstracts over the local SQLite store and the remote API
// so registry commands behave identically in both modes.
type registryBackend interface {
	Register(m manifest.Manifest) (manifest.Manifest, error)
	Get(name string) (manifest.Manifest, error)
	List(state manifest.LifecycleState, limit int) ([]manifest.Manifest, error)
	Search(capability, query string, limit int) ([]manifest.Manifest, error)
	UpdateLifecycle(name string, state manifest.LifecycleState) (manifest.Manifest, error)
	Delete(name string) error
	Close() error
}

func openBackend() (registryBackend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.RemoteMode() {
		return &remoteBackend{client: client.New(cfg.APIURL)}, nil
	}
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}
	if err := fsx.EnsureDir(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &localBackend{store: s}, nil
}

type localBackend struct {
	store *store.Store
}

func (b *localBackend) Register(m manifest.Manifest) (manifest.Manifest, error) {
	return b.store.Register(m, time.Now())
}

func (b *localBackend) Get(name string) (manifest.Manifest, error) {
	return b.store.Get(name)
}

func (b *localBackend) List(state manifest.LifecycleState, limit int) ([]manifest.Manifest, error) {
	return b.store.List(state, limit)
}

func (b *localBackend) Search(capability, query string, limit int) ([]manifest.Manifest, error) {
	return b.store.Search(capability, query, limit)
}

func (b *localBackend) UpdateLifecycle(name string, state manifest.LifecycleState) (manifest.Manifest, error) {
	if err := b.store.UpdateLifecycle(name, state, time.Now()); err != nil {
		return manifest.Manifest{}, err
	}
	return b.store.Get(name)
}

func (b *localBackend) Delete(name string) error {
	return b.store.Delete(name)
}

func (b *localBackend) Close() error {
	return b.store.Close()
}

type remoteBackend struct {
	client *client.Client
}

func (b *remoteBackend) Register(m manifest.Manifest) (manifest.Manifest, error) {
	return b.client.Register(context.Background(), m)
}

func (b *remoteBackend) Get(name string) (manifest.Manifest, error) {
	return b.client.Get(context.Background(), name)
}

func (b *remoteBackend) List(state manifest.LifecycleState, limit int) ([]manifest.Manifest, error) {
	return b.client.List(context.Background(), state, limit)
}

func (b *remoteBackend) Search(capability, query string, limit int) ([]manifest.Manifest, error) {
	return b.client.Search(context.Background(), capability, query, limit)
}

func (b *remoteBackend) UpdateLifecycle(name string, state manifest.LifecycleState) (manifest.Manifest, error) {
	return b.client.UpdateLifecycle(context.Background(), name, state)
}

func (b *remoteBackend) Delete(name string) error {
	return b.client.Delete(context.Background(), name)
}

func (b *remoteBackend) Close() error {
	return nil
}
