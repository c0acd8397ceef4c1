package validators

import (
	"regexp"

	"carpool/internal/models"
	"carpool/internal/services"
	"carpool/internal/utils"
)

var (
	emailPattern      = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern      = regexp.MustCompile(`^\d{10}$`)
	postalCodePattern = regexp.MustCompile(`^\d{6}$`)
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// ValidateSignup checks the signup body field by field and returns one
// message per offending field.
func ValidateSignup(req *services.RegisterRequest) map[string]string {
	errors := make(map[string]string)

	if len(req.Name) < 3 || len(req.Name) > 50 {
		errors["name"] = "Name size should be 3 to 50 characters"
	}
	if len(req.Nickname) < 3 || len(req.Nickname) > 30 {
		errors["nickname"] = "Nickname size should be 3 to 30 characters"
	}
	if len(req.Username) < 3 || len(req.Username) > 20 {
		errors["username"] = "Username size should be 3 to 20 characters"
	}
	if len(req.Password) < utils.PasswordMinLength || len(req.Password) > utils.PasswordMaxLength {
		errors["password"] = "Password size should be 8 to 16 characters"
	}
	if !emailPattern.MatchString(req.Contact.Email) {
		errors["contact.email"] = "Invalid Email"
	}
	if !phonePattern.MatchString(req.Contact.Phone) {
		errors["contact.phone"] = "Invalid Phone Number"
	}
	if req.Role != models.RoleRider && req.Role != models.RoleDriver {
		errors["role"] = "Invalid Role"
	}
	if req.Gender != models.GenderMale && req.Gender != models.GenderFemale && req.Gender != models.GenderOther {
		errors["gender"] = "Invalid Gender"
	}
	if len(req.Address.Street) < 10 || len(req.Address.Street) > 100 {
		errors["address.street"] = "Address size should be 10 to 100 characters"
	}
	if len(req.Address.City) < 2 || len(req.Address.City) > 50 {
		errors["address.city"] = "City size should be 2 to 50 characters"
	}
	if len(req.Address.State) < 2 || len(req.Address.State) > 50 {
		errors["address.state"] = "State size should be 2 to 50 characters"
	}
	if !postalCodePattern.MatchString(req.Address.PostalCode) {
		errors["address.postal_code"] = "Invalid Postal Code"
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}

func ValidateLogin(req *LoginRequest) map[string]string {
	errors := make(map[string]string)

	if len(req.Username) < 3 || len(req.Username) > 20 {
		errors["username"] = "Username size should be 3 to 20 characters"
	}
	if len(req.Password) < utils.PasswordMinLength || len(req.Password) > utils.PasswordMaxLength {
		errors["password"] = "Password size should be 8 to 16 characters"
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}

func ValidateChangePassword(req *ChangePasswordRequest) map[string]string {
	errors := make(map[string]string)

	if len(req.Password) < utils.PasswordMinLength || len(req.Password) > utils.PasswordMaxLength {
		errors["password"] = "Password size should be 8 to 16 characters"
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}
