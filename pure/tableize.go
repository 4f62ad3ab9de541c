package pure

// Tableize memoizes fn by its argument. fn must be pure: the table may
// serve any earlier result for an equal argument.
func Tableize[I comparable, O any](fn func(I) O, maxTableSize uint32) func(I) O {
	memo := NewMemo[I, O](maxTableSize)
	return func(i I) O {
		v, ok := memo.Load(i)
		if !ok {
			v = fn(i)
			memo.Store(i, v)
		}
		return v
	}
}

type result[O1 any, O2 any] struct {
	O1 O1
	O2 O2
}

// Tableize2 is Tableize for functions with two results.
func Tableize2[I comparable, O1, O2 any](fn func(I) (O1, O2), maxTableSize uint32) func(I) (O1, O2) {
	memo := NewMemo[I, result[O1, O2]](maxTableSize)
	return func(i I) (O1, O2) {
		res, ok := memo.Load(i)
		if !ok {
			v1, v2 := fn(i)
			res = result[O1, O2]{O1: v1, O2: v2}
			memo.Store(i, res)
		}
		return res.O1, res.O2
	}
}
