package client

import "sync"

// Default view parameters: newest-first, first page.
const (
	DefaultSortBy    = "upload_timestamp"
	DefaultSortOrder = "DESC"
	DefaultPerPage   = 20
)

// Filter is the user-chosen listing filter. All fields optional; dates are
// date-only strings (YYYY-MM-DD).
type Filter struct {
	Filename      string
	FileExtension string
	DateFrom      string
	DateTo        string
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// View is one {filter, sort, page} tuple over the listing.
type View struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
	Filter    Filter
}

// DefaultView returns the newest-first first page with no filter.
func DefaultView() View {
	return View{
		Page:      1,
		PerPage:   DefaultPerPage,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

// IsDefault reports whether the view is the unfiltered newest-first page 1,
// the only view the poller refreshes.
func (v View) IsDefault() bool {
	return v.Page == 1 &&
		v.SortBy == DefaultSortBy &&
		v.SortOrder == DefaultSortOrder &&
		v.Filter.IsZero()
}

// Session holds one listing session's state: the active view, auth
// presence, and the last server-reported total used for new-upload
// detection. It replaces ambient browser storage with an injected object so
// the sync layer is testable without a browser.
type Session struct {
	mu sync.Mutex

	authenticated bool
	view          View
	lastTotal     int
	totalObserved bool
}

// NewSession creates a session on the default view.
func NewSession() *Session {
	return &Session{view: DefaultView()}
}

// SetAuthenticated records auth presence for the session.
func (s *Session) SetAuthenticated(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = ok
}

// Authenticated reports whether the session has auth presence.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// View returns the active view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetPage moves the session to another page of the current view.
func (s *Session) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Page = page
}

// SetSort changes the sort of the current view and returns to page 1.
func (s *Session) SetSort(sortBy, sortOrder string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SortBy = sortBy
	s.view.SortOrder = sortOrder
	s.view.Page = 1
}

// ApplyFilter replaces the filter, returns to page 1, and resets the
// observed total: a fresh filter means a fresh baseline for new-upload
// detection.
func (s *Session) ApplyFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Filter = f
	s.view.Page = 1
	s.totalObserved = false
	s.lastTotal = 0
}

// ObserveTotal records a server-reported total and reports whether it
// increased since the previous observation. The first observation after a
// reset never counts as an increase.
func (s *Session) ObserveTotal(total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	increased := s.totalObserved && total > s.lastTotal
	s.lastTotal = total
	s.totalObserved = true
	return increased
}

// SnapBack forces the session back to page 1 of the current view.
func (s *Session) SnapBack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Page = 1
}
