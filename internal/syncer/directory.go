package syncer

import (
	"context"
	"sort"
	"sync"

	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/store"
)

// DirectoryLookup resolves one batch of owner IDs to the account keys they
// own. Implementations may enforce a ceiling on the batch size; the resolver
// never passes a batch larger than its configured chunk.
type DirectoryLookup interface {
	Lookup(ctx context.Context, ownerIDs []string) ([]string, error)
}

// DirectoryResolver turns an owner list into the set of account keys to
// sync. Owner lists are split into lookup-sized chunks resolved in parallel
// and the results merged, deduplicated and sorted.
type DirectoryResolver struct {
	lookup    DirectoryLookup
	batchSize int
	logger    *logging.Logger
}

// NewDirectoryResolver creates a resolver with the given chunk size.
func NewDirectoryResolver(lookup DirectoryLookup, batchSize int) *DirectoryResolver {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &DirectoryResolver{
		lookup:    lookup,
		batchSize: batchSize,
		logger:    logging.NewLogger(),
	}
}

// Resolve returns every account key owned by the given owners. Any chunk
// failing fails the whole resolution; a partial account list would silently
// skip accounts downstream.
func (r *DirectoryResolver) Resolve(ctx context.Context, ownerIDs []string) ([]string, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	chunks := chunkStrings(ownerIDs, r.batchSize)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		merged   = make(map[string]struct{})
	)

	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()

			keys, err := r.lookup.Lookup(ctx, chunk)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for _, key := range keys {
				merged[key] = struct{}{}
			}
		}(chunk)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	r.logger.Debug("directory resolution finished",
		"owners", len(ownerIDs), "chunks", len(chunks), "accounts", len(keys))
	return keys, nil
}

// StoreDirectory resolves owner IDs against locally connected accounts.
// The platform hands out one open ID per creator and ReelSync keys
// credentials by it, so an owner resolves to its own key when connected
// and to nothing otherwise.
type StoreDirectory struct {
	store store.Store
}

// NewStoreDirectory creates a directory lookup backed by the credential store.
func NewStoreDirectory(s store.Store) *StoreDirectory {
	return &StoreDirectory{store: s}
}

// Lookup returns the account keys of the owners that have connected.
func (d *StoreDirectory) Lookup(ctx context.Context, ownerIDs []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	for _, id := range ownerIDs {
		if _, ok := d.store.GetCredential(id); ok {
			keys = append(keys, id)
		}
	}
	return keys, nil
}

var _ DirectoryLookup = (*StoreDirectory)(nil)

func chunkStrings(values []string, size int) [][]string {
	var chunks [][]string
	for len(values) > size {
		chunks = append(chunks, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		chunks = append(chunks, values)
	}
	return chunks
}
