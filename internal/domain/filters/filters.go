package filters

const (
	DefaultLimit = 20
	MaxLimit     = 100
	TrendingSize = 10
)

// Pagination is decoded from the ?skip=&limit= query of listing endpoints.
type Pagination struct {
	Skip  int `schema:"skip" json:"skip" validate:"gte=0"`
	Limit int `schema:"limit" json:"limit" validate:"gte=1"`
}

func NewPagination(defaultLimit int) Pagination {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return Pagination{Skip: 0, Limit: defaultLimit}
}

func (p Pagination) Offset() int {
	if p.Skip < 0 {
		return 0
	}
	return p.Skip
}

// LimitOrMax caps the requested page size so storage never gets an unbounded query.
func (p Pagination) LimitOrMax(max int) int {
	if max <= 0 {
		max = MaxLimit
	}
	if p.Limit <= 0 || p.Limit > max {
		return max
	}
	return p.Limit
}
