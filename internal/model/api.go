package model

// AccountRequest names the account a role change applies to.
type AccountRequest struct {
	Account string `json:"account"`
}

// AddClubRequest is the payload for creating a club.
type AddClubRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// AddBoatRequest is the payload for listing a boat. The price is given either
// in smallest units (unit_price) or in display units (price), not both.
type AddBoatRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   Amount `json:"unit_price"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
}

// PurchaseRequest is the payload for buying a boat. Funds are given either in
// smallest units (funds_sent) or in display units (funds), not both.
type PurchaseRequest struct {
	Quantity  int64  `json:"quantity"`
	FundsSent Amount `json:"funds_sent"`
	Funds     string `json:"funds"`
}

// ErrorResponse is a standard JSON error envelope. Code carries the error
// kind so clients can give field-specific feedback. When a transfer failed
// after commit, Reference identifies it and Record holds the committed
// purchase or withdrawal.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Reference string `json:"reference,omitempty"`
	Record    any    `json:"record,omitempty"`
}
