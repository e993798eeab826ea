package dto

type LookupResponse struct {
	Text string `json:"text"`
}
