package server

import (
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"rfpdesk/internal"
	"rfpdesk/pkg/types"
)

type registerInput struct {
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {

	_, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err == nil {
		s.logger.Info("user is already logged in, redirecting to home")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Create Account"},
	}

	err = s.renderTemplate(w, r, "page.register", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {

	var ctx = r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	var input registerInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Create Account"},
		Email:        input.Email,
	}

	data.FieldErrors = validateRegisterInput(input.Email, input.Password, input.ConfirmPassword)
	if len(data.FieldErrors) > 0 {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during registration")

		data.Error = "Please fix the highlighted fields."
		err := s.renderTemplate(w, r, "page.register", data)
		if err != nil {
			s.logger.WithError(err).Error("failed to render register page with validation errors")
			s.internalServerError(w)
		}

		return
	}

	err := s.authClient.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")

		data.Error = "Unable to create account. Please try again."
		renderErr := s.renderTemplate(w, r, "page.register", data)
		if renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render register page with signup error")
			s.internalServerError(w)
		}
		return
	}

	http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
}

var (
	hasUpperReg = regexp.MustCompile(`[A-Z]`)
	hasLowerReg = regexp.MustCompile(`[a-z]`)
	hasDigitReg = regexp.MustCompile(`[0-9]`)
)

func validateRegisterInput(email, password, confirmPassword string) map[string]string {
	errs := map[string]string{}

	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if password != confirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	switch {
	case len(password) < 8:
		errs["password"] = "Password must be at least 8 characters."
	case !hasUpperReg.MatchString(password) || !hasLowerReg.MatchString(password) || !hasDigitReg.MatchString(password):
		errs["password"] = "Password must include upper and lower case letters and a number."
	}

	return errs
}
