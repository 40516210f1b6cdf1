package scene

// #region nav

// DefaultNavThreshold is the scroll offset past which the navigation bar
// switches to its compact style.
const DefaultNavThreshold = 100

// NavThreshold tracks the navigation bar's scrolled state.
type NavThreshold struct {
	threshold float64
	scrolled  bool
}

// NewNavThreshold creates a tracker for the given offset threshold.
func NewNavThreshold(threshold float64) *NavThreshold {
	return &NavThreshold{threshold: threshold}
}

// Update feeds a scroll offset and reports the scrolled state and whether it
// changed.
func (n *NavThreshold) Update(offset float64) (scrolled, changed bool) {
	next := offset > n.threshold
	changed = next != n.scrolled
	n.scrolled = next
	return next, changed
}

// Scrolled reports the current state.
func (n *NavThreshold) Scrolled() bool { return n.scrolled }

// #endregion nav
