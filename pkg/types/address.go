package types

// Address is owned by exactly one user and embedded in the user's address
// list. Orders copy the chosen address at checkout so later edits never
// retroactively alter past orders.
type Address struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pinCode"`
}

// Clone returns an independent copy for embedding into an order snapshot.
func (a Address) Clone() Address {
	return a
}
