package catalog

import "github.com/zhouzirui/movie-catalog/backend/internal/model/movie"

// Query is a request against the catalog: ListQuery or GetQuery.
type Query interface {
	cacheKey() string
}

// ListQuery asks for every movie as an id/title pair.
type ListQuery struct{}

func (ListQuery) cacheKey() string { return "movies:list" }

// GetQuery asks for the full record of one movie.
type GetQuery struct {
	ID string
}

func (q GetQuery) cacheKey() string { return "movies:get:" + q.ID }

// ListResult is the body of a successful ListQuery.
type ListResult struct {
	Movies []movie.Summary `json:"movies"`
}

// DetailResult is the body of a successful GetQuery.
type DetailResult struct {
	Movie movie.Movie `json:"movie"`
}
