package document

// Resolve turns an anchor/focus pair into the inclusive, ascending run of
// token ids between them. A collapsed selection (anchor == focus) yields
// ok == false and must not create a span. Indices are not clamped.
func Resolve(anchor, focus int) (ids []int, ok bool) {
	if anchor == focus {
		return nil, false
	}
	lo, hi := anchor, focus
	if lo > hi {
		lo, hi = hi, lo
	}
	ids = make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		ids = append(ids, i)
	}
	return ids, true
}
