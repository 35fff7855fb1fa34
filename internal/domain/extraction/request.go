package extraction

// PersonLogsRequest asks for the activity logs of a single person. Two
// variants exist: a person identifier plus explicit date window, or a
// notification id (IUN) whose legal timestamp derives a 3-month window.
// The deanonymized variant resolves pseudonymous identifiers either before
// querying (tax id given) or on the result records (IUN given).
type PersonLogsRequest struct {
	TicketNumber  string
	Deanonymize   bool
	RecipientType RecipientType
	TaxID         string
	PersonID      string
	IUN           string
	DateFrom      string
	DateTo        string
}

// NotificationBundleRequest asks for every artifact of a notification:
// legal facts, attached documents, payment documents and the related logs.
type NotificationBundleRequest struct {
	TicketNumber string
	IUN          string
}

// MonthlyExportRequest asks for a CSV export of every notification an
// organization sent within an explicit month window. Months are given as
// YYYY-MM; the window covers StartMonth through the whole of EndMonth.
type MonthlyExportRequest struct {
	TicketNumber string
	StartMonth   string
	EndMonth     string
	IPACode      string
}

// TraceLogsRequest asks for logs correlated by a trace id or by a session
// id (jti), within an explicit date window. Exactly one of TraceID and
// SessionID is set.
type TraceLogsRequest struct {
	TicketNumber string
	TraceID      string
	SessionID    string
	DateFrom     string
	DateTo       string
	Deanonymize  bool
}
