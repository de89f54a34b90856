package assets

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of decoded assets kept in memory.
const DefaultCacheSize = 128

// Resolver turns clip sources into renderable URLs. Local tokens become
// data URLs read through an in-memory cache; every other source passes
// through.
type Resolver struct {
	store Store
	cache *lru.Cache[string, string]
	log   *slog.Logger
}

// NewResolver builds a resolver over store. A size of zero picks
// DefaultCacheSize.
func NewResolver(store Store, size int, logger *slog.Logger) (*Resolver, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{store: store, cache: cache, log: logger}, nil
}

// Resolve implements the evaluator's resolver contract.
func (r *Resolver) Resolve(src string) (string, bool) {
	return r.ResolveContext(context.Background(), src)
}

// ResolveContext resolves src. A token without backing data is logged and
// reported as unresolved.
func (r *Resolver) ResolveContext(ctx context.Context, src string) (string, bool) {
	if src == "" {
		return "", false
	}
	_, id, ok := ParseToken(src)
	if !ok {
		if IsToken(src) {
			return "", false
		}
		return src, true
	}
	if url, hit := r.cache.Get(id); hit {
		return url, true
	}
	if r.store == nil {
		return "", false
	}
	a, err := r.store.Get(ctx, id)
	if err != nil {
		r.log.Warn("asset unresolved", "token", src, "err", err)
		return "", false
	}
	url := DataURL(a.MIME, a.Data)
	r.cache.Add(id, url)
	return url, true
}

// Forget drops a cached asset.
func (r *Resolver) Forget(id string) {
	r.cache.Remove(id)
}

// DataURL encodes data inline.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
