package domain

import "strings"

type ShippingAddress struct {
	Email      string `json:"email" bson:"email"`
	FirstName  string `json:"first_name" bson:"first_name"`
	LastName   string `json:"last_name" bson:"last_name"`
	Street     string `json:"address" bson:"address"`
	Apartment  string `json:"apartment,omitempty" bson:"apartment,omitempty"`
	City       string `json:"city" bson:"city"`
	Region     string `json:"region" bson:"region"`
	PostalCode string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	Phone      string `json:"phone" bson:"phone"`
	Country    string `json:"country" bson:"country"`
}

// SavedAddress is a record in the address-book collaborator.
type SavedAddress struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code,omitempty"`
	IsDefault  bool   `json:"is_default"`
}

// AddressInput models the two mutually exclusive sources of a shipping
// address: a selected saved record or manually typed fields. Selecting a
// saved record overwrites the fields; any manual edit drops the selection.
type AddressInput struct {
	savedID string
	fields  ShippingAddress
}

func ManualAddress(fields ShippingAddress) AddressInput {
	return AddressInput{fields: fields}
}

// SelectSaved switches the input to a saved record. The record carries no
// email, so the current email is kept.
func (a *AddressInput) SelectSaved(rec SavedAddress) {
	first, last := splitFullName(rec.FullName)
	a.savedID = rec.ID
	a.fields = ShippingAddress{
		Email:      a.fields.Email,
		FirstName:  first,
		LastName:   last,
		Street:     rec.Street,
		City:       rec.City,
		Region:     rec.Region,
		PostalCode: rec.PostalCode,
		Phone:      rec.Phone,
		Country:    a.fields.Country,
	}
}

// Edit applies a manual change and invalidates the saved-address selection.
func (a *AddressInput) Edit(mutate func(*ShippingAddress)) {
	a.savedID = ""
	mutate(&a.fields)
}

func (a AddressInput) Fields() ShippingAddress {
	return a.fields
}

// SavedID reports the selected saved record, if the selection is still valid.
func (a AddressInput) SavedID() (string, bool) {
	return a.savedID, a.savedID != ""
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
