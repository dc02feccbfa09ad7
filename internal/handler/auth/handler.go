package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/handler"
	"github.com/jwalitptl/patient-portal/internal/middleware"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/service/auth"
	"github.com/jwalitptl/patient-portal/internal/session"
	"github.com/jwalitptl/patient-portal/internal/validator"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
)

// The login page shows one message for every failure mode so the form
// cannot be used to probe which emails are registered.
const invalidCredentialsMsg = "Invalid email or password. Please try again."

type Handler struct {
	authSvc    *auth.Service
	sessionMgr *session.Manager
	sessions   *middleware.SessionMiddleware
	metrics    *metrics.Metrics
}

func NewHandler(authSvc *auth.Service, sessionMgr *session.Manager, sessions *middleware.SessionMiddleware, m *metrics.Metrics) *Handler {
	return &Handler{
		authSvc:    authSvc,
		sessionMgr: sessionMgr,
		sessions:   sessions,
		metrics:    m,
	}
}

// RegisterRoutes wires the public pages
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Landing)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
}

// Landing shows the public landing page, or the dashboard for a
// signed-in browser.
func (h *Handler) Landing(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	handler.Render(c, h.sessionMgr, http.StatusOK, "index.html", nil)
}

func (h *Handler) ShowRegister(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	handler.Render(c, h.sessionMgr, http.StatusOK, "register.html", gin.H{
		"Form":    &model.RegisterForm{},
		"Errors":  validator.Errors{},
		"Genders": model.Genders,
	})
}

// Register validates the form, creates the patient and signs the new
// account straight in. On any failure the form re-renders with
// field-level errors and the previously entered values, passwords
// excepted.
func (h *Handler) Register(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	var form model.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	errs := validator.CheckRegister(&form, time.Now())
	if len(errs) == 0 {
		patient, err := h.createPatient(c, &form)
		switch {
		case err == nil:
			h.metrics.RegistrationsTotal.Inc()
			h.establishSession(c, patient, "Registration successful! Welcome to your patient portal.")
			return
		case errors.Is(err, auth.ErrEmailTaken):
			errs.Add("email", "An account with this email already exists. Please use a different email or log in.")
		default:
			log.Error().Err(err).Msg("registration failed")
			handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
				"Title": "Registration failed",
			})
			return
		}
	}

	form.Password = ""
	form.ConfirmPassword = ""
	handler.Render(c, h.sessionMgr, http.StatusOK, "register.html", gin.H{
		"Form":    &form,
		"Errors":  errs,
		"Genders": model.Genders,
	})
}

func (h *Handler) ShowLogin(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	data := gin.H{"Email": ""}
	if c.Query("expired") != "" {
		data["Notice"] = "Your session has expired. Please log in again."
	}
	handler.Render(c, h.sessionMgr, http.StatusOK, "login.html", data)
}

// Login checks credentials and establishes the session. Unknown email,
// wrong password and deactivated account all produce the same message.
func (h *Handler) Login(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	var form model.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		handler.Render(c, h.sessionMgr, http.StatusOK, "login.html", gin.H{
			"Error": invalidCredentialsMsg,
			"Email": form.Email,
		})
		return
	}

	patient, err := h.authSvc.Login(c.Request.Context(), validator.NormalizeEmail(form.Email), form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			handler.Render(c, h.sessionMgr, http.StatusOK, "login.html", gin.H{
				"Error": invalidCredentialsMsg,
				"Email": form.Email,
			})
			return
		}
		log.Error().Err(err).Msg("login failed")
		handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Login failed",
		})
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.establishSession(c, patient, "Welcome back, "+patient.FirstName+"!")
}

// Logout destroys the session unconditionally. Registered behind
// RequireAuth; an anonymous hit never reaches here.
func (h *Handler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess != nil {
		if err := h.sessionMgr.Destroy(c.Request.Context(), sess); err != nil {
			log.Error().Err(err).Msg("failed to destroy session")
		}
	}
	h.sessions.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) createPatient(c *gin.Context, form *model.RegisterForm) (*model.Patient, error) {
	dob, err := time.Parse("2006-01-02", form.DateOfBirth)
	if err != nil {
		// CheckRegister already accepted the date; this cannot happen
		return nil, err
	}

	patient := &model.Patient{
		FirstName:             form.FirstName,
		LastName:              form.LastName,
		Email:                 validator.NormalizeEmail(form.Email),
		Phone:                 validator.NormalizePhone(form.Phone),
		DateOfBirth:           dob,
		Gender:                form.Gender,
		Address:               form.Address,
		EmergencyContactName:  form.EmergencyContactName,
		EmergencyContactPhone: validator.NormalizePhone(form.EmergencyContactPhone),
	}

	if err := h.authSvc.Register(c.Request.Context(), patient, form.Password); err != nil {
		return nil, err
	}
	return patient, nil
}

func (h *Handler) establishSession(c *gin.Context, patient *model.Patient, flash string) {
	token, sess, err := h.sessionMgr.Create(c.Request.Context(), patient)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Something went wrong",
		})
		return
	}

	sess.AddFlash("success", flash)
	if err := h.sessionMgr.Save(c.Request.Context(), sess); err != nil {
		log.Error().Err(err).Msg("failed to save session")
	}

	h.sessions.IssueCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
