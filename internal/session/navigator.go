package session

// PageSize is how many ordinals one navigator page lists.
const PageSize = 20

// Navigator tracks the current ordinal and the visible page. Every ordinal
// is listed; locked ones are shown but cannot be reached.
type Navigator struct {
	total     int
	reachable func(int) bool
	answered  func(int) bool

	current int
	page    int
}

type PageItem struct {
	Ordinal  int  `json:"ordinal"`
	Locked   bool `json:"locked"`
	Answered bool `json:"answered"`
	Current  bool `json:"current"`
}

type PageView struct {
	Number int        `json:"number"`
	Pages  int        `json:"pages"`
	Items  []PageItem `json:"items"`
}

func NewNavigator(total int, reachable, answered func(int) bool) *Navigator {
	n := &Navigator{total: total, reachable: reachable, answered: answered}
	if total > 0 {
		n.current, n.page = 1, 1
	}
	return n
}

func (n *Navigator) Current() int { return n.current }
func (n *Navigator) CurrentPage() int { return n.page }

func (n *Navigator) Pages() int {
	return (n.total + PageSize - 1) / PageSize
}

func (n *Navigator) Next() Signal {
	if n.current >= n.total {
		return SignalNone
	}
	return n.JumpTo(n.current + 1)
}

func (n *Navigator) Previous() Signal {
	if n.current <= 1 {
		return SignalNone
	}
	return n.JumpTo(n.current - 1)
}

// JumpTo moves to ordinal and its page. Out-of-range ordinals are ignored;
// locked ones raise SignalUpgradePrompt without moving.
func (n *Navigator) JumpTo(ordinal int) Signal {
	if ordinal < 1 || ordinal > n.total {
		return SignalNone
	}
	if !n.reachable(ordinal) {
		return SignalUpgradePrompt
	}
	n.current = ordinal
	n.page = pageOf(ordinal)
	return SignalNone
}

// SetPage changes the visible page only.
func (n *Navigator) SetPage(page int) {
	if page < 1 || page > n.Pages() {
		return
	}
	n.page = page
}

func (n *Navigator) Page() PageView {
	v := PageView{Number: n.page, Pages: n.Pages()}
	if n.page == 0 {
		return v
	}
	first := (n.page-1)*PageSize + 1
	last := min(first+PageSize-1, n.total)
	v.Items = make([]PageItem, 0, last-first+1)
	for o := first; o <= last; o++ {
		v.Items = append(v.Items, PageItem{
			Ordinal:  o,
			Locked:   !n.reachable(o),
			Answered: n.answered(o),
			Current:  o == n.current,
		})
	}
	return v
}

func pageOf(ordinal int) int {
	return (ordinal + PageSize - 1) / PageSize
}
