package validator

import (
	"time"

	"github.com/jwalitptl/patient-portal/internal/model"
)

// CheckRegister validates every registration field and returns the full
// field-to-message map so the form can render all problems in one pass.
func CheckRegister(f *model.RegisterForm, now time.Time) Errors {
	errs := Errors{}

	if msg := Name(f.FirstName, "First name"); msg != "" {
		errs.Add("first_name", msg)
	}
	if msg := Name(f.LastName, "Last name"); msg != "" {
		errs.Add("last_name", msg)
	}
	if msg := Email(f.Email); msg != "" {
		errs.Add("email", msg)
	}
	if msg := Phone(f.Phone, "Phone number"); msg != "" {
		errs.Add("phone", msg)
	}
	if msg := DateOfBirth(f.DateOfBirth, now); msg != "" {
		errs.Add("date_of_birth", msg)
	}
	if msg := Gender(f.Gender, model.Genders); msg != "" {
		errs.Add("gender", msg)
	}
	if msg := Address(f.Address); msg != "" {
		errs.Add("address", msg)
	}
	if msg := Name(f.EmergencyContactName, "Emergency contact name"); msg != "" {
		errs.Add("emergency_contact_name", msg)
	}
	if msg := Phone(f.EmergencyContactPhone, "Emergency contact phone"); msg != "" {
		errs.Add("emergency_contact_phone", msg)
	}
	if msg := Password(f.Password); msg != "" {
		errs.Add("password", msg)
	}
	if f.Password != "" && f.Password != f.ConfirmPassword {
		errs.Add("confirm_password", "Passwords do not match")
	}

	return errs
}

// CheckProfile validates the editable profile fields
func CheckProfile(f *model.ProfileForm) Errors {
	errs := Errors{}

	if msg := Name(f.FirstName, "First name"); msg != "" {
		errs.Add("first_name", msg)
	}
	if msg := Name(f.LastName, "Last name"); msg != "" {
		errs.Add("last_name", msg)
	}
	if msg := Phone(f.Phone, "Phone number"); msg != "" {
		errs.Add("phone", msg)
	}
	if msg := Address(f.Address); msg != "" {
		errs.Add("address", msg)
	}
	if msg := Name(f.EmergencyContactName, "Emergency contact name"); msg != "" {
		errs.Add("emergency_contact_name", msg)
	}
	if msg := Phone(f.EmergencyContactPhone, "Emergency contact phone"); msg != "" {
		errs.Add("emergency_contact_phone", msg)
	}

	return errs
}

// CheckPasswordChange validates the password change form. Verifying the
// current password against the stored hash is the auth service's job.
func CheckPasswordChange(f *model.ChangePasswordForm) Errors {
	errs := Errors{}

	if msg := Required(f.CurrentPassword, "Current password"); msg != "" {
		errs.Add("current_password", msg)
	}
	if msg := Password(f.NewPassword); msg != "" {
		errs.Add("new_password", msg)
	}
	if f.NewPassword != "" && f.NewPassword != f.ConfirmPassword {
		errs.Add("confirm_password", "New passwords do not match")
	}

	return errs
}
