package dto

import (
	"fmt"
	"time"
)

// birthDateLayout is the format of dataNascita sent by the browser client.
const birthDateLayout = "2006-01-02"

// RegisterReq represents the request body for the /register endpoint.
// Profile keys keep the names used by the existing browser client.
type RegisterReq struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"nome"`
	LastName  string `json:"cognome"`
	Phone     string `json:"telefono"`
	Gender    string `json:"genere"`
	BirthDate string `json:"dataNascita"`
	Address   string `json:"indirizzo"`
}

// ParsedBirthDate returns the birth date, or nil when it was not sent.
func (r RegisterReq) ParsedBirthDate() (*time.Time, error) {
	if r.BirthDate == "" {
		return nil, nil
	}
	d, err := time.Parse(birthDateLayout, r.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("dataNascita must be YYYY-MM-DD")
	}
	return &d, nil
}
