package notification

// Notification is the detail view of a sent notification, as returned by
// the delivery API. Only the fields the extractor reads are modelled.
type Notification struct {
	IUN        string            `json:"iun"`
	SentAt     string            `json:"sentAt"`
	Subject    string            `json:"subject"`
	Recipients []Recipient       `json:"recipients"`
	Documents  []Document        `json:"documents"`
	Timeline   []TimelineElement `json:"timeline"`
}

type Recipient struct {
	TaxID        string   `json:"taxId"`
	Denomination string   `json:"denomination"`
	Payment      *Payment `json:"payment"`
}

// Payment carries the attachment keys of payment-related documents.
type Payment struct {
	PagoPaFormKey string `json:"pagoPaFormKey"`
	F24FlatKey    string `json:"f24FlatRateKey"`
}

// Keys returns the non-empty payment attachment names and keys.
func (p *Payment) Keys() map[string]string {
	if p == nil {
		return nil
	}
	keys := make(map[string]string, 2)
	if p.PagoPaFormKey != "" {
		keys["PAGOPA"] = p.PagoPaFormKey
	}
	if p.F24FlatKey != "" {
		keys["F24_FLAT"] = p.F24FlatKey
	}
	return keys
}

type Document struct {
	DocIdx string `json:"docIdx"`
	Title  string `json:"title"`
}

type TimelineElement struct {
	Category      string        `json:"category"`
	Timestamp     string        `json:"timestamp"`
	LegalFactsIds []LegalFactID `json:"legalFactsIds"`
}

type LegalFactID struct {
	Key      string `json:"key"`
	Category string `json:"category"`
}

// LegalStartDate returns the timestamp the notification became legally
// effective: the REQUEST_ACCEPTED timeline element, falling back to the
// sent timestamp.
func (n *Notification) LegalStartDate() string {
	for _, el := range n.Timeline {
		if el.Category == "REQUEST_ACCEPTED" {
			return el.Timestamp
		}
	}
	return n.SentAt
}

// LegalFacts returns every legal fact referenced by the timeline.
func (n *Notification) LegalFacts() []LegalFactID {
	var facts []LegalFactID
	for _, el := range n.Timeline {
		facts = append(facts, el.LegalFactsIds...)
	}
	return facts
}

// Summary is one row of a paged sent-notification search.
type Summary struct {
	IUN        string   `json:"iun"`
	SentAt     string   `json:"sentAt"`
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
}

type searchResponse struct {
	ResultsPage  []Summary `json:"resultsPage"`
	MoreResult   bool      `json:"moreResult"`
	NextPagesKey []string  `json:"nextPagesKey"`
}

// downloadMetadata is the wire shape shared by the legal fact, document
// and payment metadata endpoints.
type downloadMetadata struct {
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	RetryAfter int    `json:"retryAfter"`
}
