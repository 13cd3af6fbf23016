package session

// Session is the locally persisted login state. Zero-valued fields mean
// "not set"; LoggedIn distinguishes a fresh database from a signed-in
// one.
type Session struct {
	Token          string
	UserID         string
	Email          string
	FullName       string
	CurrentAssetID string
	CurrentJobID   string
	UpdatedAt      string
}

// LoggedIn reports whether a bearer token is stored.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// JobRecord is one row of the local background job history.
type JobRecord struct {
	JobID     string
	Kind      string
	AssetID   string
	Status    string
	Progress  int
	Message   string
	Error     string
	CreatedAt string
	UpdatedAt string
}
