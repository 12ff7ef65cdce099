package repository

import (
	"errors"
	"log/slog"
)

// Query describes a paginated listing.
type Query struct {
	Limit int

	Paginator *Paginator
}

// NewQuery returns an empty query using the default page size.
func NewQuery() *Query {
	return &Query{Limit: DefaultPaginationLimit}
}

// ApplyPagination sets the page size and decodes the continuation token, if any.
func (q *Query) ApplyPagination(limit int32, token string) error {
	queryLimit := DefaultPaginationLimit
	if limit > 0 {
		queryLimit = min(maxPaginationLimit, int(limit))
	}
	q.Limit = queryLimit

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return errors.New("invalid page token")
	}
	q.Paginator = paginator
	return nil
}
