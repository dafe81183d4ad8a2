package pagination

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Params is a 1-based page request.
type Params struct {
	Page int
	Size int
}

// Normalize fills defaults and clamps the size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

func (p Params) Limit() int {
	return p.Normalize().Size
}

func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Page is one slice of a larger result.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

func NewPage[T any](items []T, p Params, total int) Page[T] {
	n := p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: n.Page, Size: n.Size, Total: total}
}
