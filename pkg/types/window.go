package types

// Window полуоткрытый интервал [Start, End) в минутах от полуночи.
// End может выходить за 24:00 для поездок, заканчивающихся после полуночи.
type Window struct {
	Start int
	End   int
}

// NewWindow строит окно от времени начала и длительности в минутах
func NewWindow(start TimeString, durationMinutes int) Window {
	s := start.Minutes()
	return Window{Start: s, End: s + durationMinutes}
}

// Overlaps проверяет пересечение [a,b) и [c,d): a < d && c < b.
// Соседние окна (конец одного равен началу другого) не пересекаются.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

// DurationMinutes длительность окна
func (w Window) DurationMinutes() int {
	return w.End - w.Start
}
