package archive

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Payload) error
	Latest(ctx context.Context) (Payload, bool, error)
}
