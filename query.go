package main

import "fmt"

const DefaultTop = 10

// Query is one load-independent run of the pipeline: filter, sort, truncate.
type Query struct {
	Criteria Criteria
	SortBy   SortKey
	Reverse  bool
	Top      int
}

func DefaultQuery() Query {
	return Query{SortBy: SortByRank, Top: DefaultTop}
}

func (q Query) Validate() error {
	if _, err := ParseSortKey(string(q.SortBy)); err != nil {
		return err
	}
	if q.Top < 0 {
		return ErrNegativeTop
	}
	return q.Criteria.Validate()
}

func Execute(d *Directory, q Query) ([]Institution, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	key := q.SortBy
	if key == "" {
		key = SortByRank
	}
	matched := Filter(d.All(), q.Criteria)
	return Top(Sort(matched, key, q.Reverse), q.Top)
}
