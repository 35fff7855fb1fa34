package rest

// extractionResponse is the terminal payload of every extraction endpoint.
// A ready archive carries the base64 zip and its password; a not-ready
// outcome carries the suggested wait instead.
type extractionResponse struct {
	Message           string `json:"message"`
	Password          string `json:"password,omitempty"`
	Zip               string `json:"zip,omitempty"`
	RetryAfterMinutes int    `json:"retryAfterMinutes,omitempty"`
}

type personIDResponse struct {
	PersonID string `json:"internalId"`
}

type taxIDResponse struct {
	TaxID string `json:"taxId"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
