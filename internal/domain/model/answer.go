package model

// Citation points a reader at the exact transcript span an answer drew on.
type Citation struct {
	ItemID    string  `json:"item_id"`
	ItemTitle string  `json:"item_title"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// Answer is the result of a retrieval query. Grounded is false when no
// chunk cleared the similarity threshold; in that case Text carries the
// fixed no-relevant-information message and Citations is empty.
type Answer struct {
	Text      string     `json:"text"`
	Grounded  bool       `json:"grounded"`
	Citations []Citation `json:"citations"`
}
