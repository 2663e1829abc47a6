package view

// Pagination is the prev/next control. Enablement comes only from the
// server-reported HasPrev/HasNext flags, never from arithmetic on Total.
type Pagination struct {
	Current int
	Total   int
	HasPrev bool
	HasNext bool
}

// Prev returns the previous page number and whether the control is enabled
func (p Pagination) Prev() (int, bool) {
	return p.Current - 1, p.HasPrev
}

// Next returns the next page number and whether the control is enabled
func (p Pagination) Next() (int, bool) {
	return p.Current + 1, p.HasNext
}

// DisplayTotal is the total page count as shown, at least 1
func (p Pagination) DisplayTotal() int {
	if p.Total <= 0 {
		return 1
	}
	return p.Total
}
