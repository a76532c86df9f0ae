package dto

import "storefront/internal/feature/auth/domain/entity"

// ProfileRes is the data block returned by /profile.
type ProfileRes struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Gender    string  `json:"gender"`
	BirthDate *string `json:"birth_date"`
	Address   string  `json:"address"`
}

// ProfileFromEntity converts a user into its public profile.
func ProfileFromEntity(u *entity.User) ProfileRes {
	res := ProfileRes{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Gender:    u.Gender,
		Address:   u.Address,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format(birthDateLayout)
		res.BirthDate = &d
	}
	return res
}
