package sqlstore

import "github.com/goliatone/go-stepgate/core"

var (
	_ core.BlobStore     = (*BlobStore)(nil)
	_ core.BlobStore     = (*CachedBlobStore)(nil)
	_ core.AccountStore  = (*AccountStore)(nil)
	_ core.StoreProvider = (*RepositoryFactory)(nil)
	_ core.StoreFactory  = (*RepositoryFactory)(nil)
)
