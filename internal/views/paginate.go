package views

type Page[T any] struct {
	Items    []T
	Page     int
	Pages    int
	Total    int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// Paginate slices items into pages of size perPage. page is clamped into range.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 25
	}
	pages := (len(items) + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(items))
	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		Pages:    pages,
		Total:    len(items),
		HasPrev:  page > 1,
		HasNext:  page < pages,
		PrevPage: max(1, page-1),
		NextPage: min(pages, page+1),
	}
}
