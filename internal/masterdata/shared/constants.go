package shared

const (
	// DefaultPage is the first page of a listing.
	DefaultPage = 1
	// DefaultLimit is the page size used when none is given.
	DefaultLimit = 50
	// MaxLimit caps the page size a client can request.
	MaxLimit = 500

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)
