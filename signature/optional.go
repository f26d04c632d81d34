package signature

// Optional is a value that is either present or absent. The zero value is
// absent.
type Optional[T any] struct {
	value   T
	present bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Optional[T]) IsPresent() bool {
	return o.present
}

func (o Optional[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}

// MustGet returns the value and panics when it is absent.
func (o Optional[T]) MustGet() T {
	if !o.present {
		panic("signature: MustGet on absent value")
	}
	return o.value
}
