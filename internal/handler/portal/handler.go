package portal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/handler"
	"github.com/jwalitptl/patient-portal/internal/middleware"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
	authService "github.com/jwalitptl/patient-portal/internal/service/auth"
	patientService "github.com/jwalitptl/patient-portal/internal/service/patient"
	"github.com/jwalitptl/patient-portal/internal/session"
	"github.com/jwalitptl/patient-portal/internal/validator"
)

type Handler struct {
	patientSvc *patientService.Service
	authSvc    *authService.Service
	sessionMgr *session.Manager
	sessions   *middleware.SessionMiddleware
}

func NewHandler(patientSvc *patientService.Service, authSvc *authService.Service, sessionMgr *session.Manager, sessions *middleware.SessionMiddleware) *Handler {
	return &Handler{
		patientSvc: patientSvc,
		authSvc:    authSvc,
		sessionMgr: sessionMgr,
		sessions:   sessions,
	}
}

// RegisterRoutes wires the authenticated pages onto the protected group
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
	r.GET("/profile", h.ShowProfile)
	r.POST("/profile", h.UpdateProfile)
	r.POST("/change-password", h.ChangePassword)
	r.POST("/deactivate", h.Deactivate)
}

func (h *Handler) Dashboard(c *gin.Context) {
	patient, ok := h.currentPatient(c)
	if !ok {
		return
	}
	handler.Render(c, h.sessionMgr, http.StatusOK, "dashboard.html", gin.H{
		"Patient": patient,
	})
}

func (h *Handler) ShowProfile(c *gin.Context) {
	patient, ok := h.currentPatient(c)
	if !ok {
		return
	}
	handler.Render(c, h.sessionMgr, http.StatusOK, "profile.html", gin.H{
		"Patient": patient,
		"Form":    profileForm(patient),
		"Errors":  validator.Errors{},
	})
}

// UpdateProfile validates changed fields and persists them. Validation
// failures re-render the form with field errors and the submitted
// values; email stays read-only on this page.
func (h *Handler) UpdateProfile(c *gin.Context) {
	patient, ok := h.currentPatient(c)
	if !ok {
		return
	}

	var form model.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	errs := validator.CheckProfile(&form)
	if len(errs) > 0 {
		handler.Render(c, h.sessionMgr, http.StatusOK, "profile.html", gin.H{
			"Patient": patient,
			"Form":    &form,
			"Errors":  errs,
		})
		return
	}

	updated, err := h.patientSvc.UpdateProfile(c.Request.Context(), patient.ID, &form)
	if err != nil {
		log.Error().Err(err).Msg("profile update failed")
		handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Profile update failed",
		})
		return
	}

	sess := middleware.CurrentSession(c)
	sess.PatientName = updated.FullName()
	sess.AddFlash("success", "Profile updated successfully!")
	if err := h.sessionMgr.Save(c.Request.Context(), sess); err != nil {
		log.Error().Err(err).Msg("failed to save session")
	}

	c.Redirect(http.StatusSeeOther, "/profile")
}

// ChangePassword verifies the current password, applies the strength
// rules to the new one, and kills every other session on success so the
// old credential stops working everywhere at once.
func (h *Handler) ChangePassword(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	var form model.ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		h.flashAndReturn(c, sess, "danger", "All password fields are required.")
		return
	}

	if errs := validator.CheckPasswordChange(&form); len(errs) > 0 {
		for _, msg := range errs {
			sess.AddFlash("danger", msg)
		}
		h.saveAndRedirect(c, sess, "/profile")
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), sess.PatientID, form.CurrentPassword, form.NewPassword)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			h.flashAndReturn(c, sess, "danger", "Current password is incorrect.")
			return
		}
		log.Error().Err(err).Msg("password change failed")
		handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Password change failed",
		})
		return
	}

	if err := h.sessionMgr.DestroyOthers(c.Request.Context(), sess.PatientID, sess.ID); err != nil {
		log.Error().Err(err).Msg("failed to destroy sibling sessions")
	}

	h.flashAndReturn(c, sess, "success", "Password changed successfully!")
}

// Deactivate flips the account inactive and ends every session. The
// record itself is never deleted.
func (h *Handler) Deactivate(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	if err := h.patientSvc.Deactivate(c.Request.Context(), sess.PatientID); err != nil {
		log.Error().Err(err).Msg("deactivation failed")
		handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Deactivation failed",
		})
		return
	}

	if err := h.sessionMgr.DestroyAll(c.Request.Context(), sess.PatientID); err != nil {
		log.Error().Err(err).Msg("failed to destroy sessions")
	}
	h.sessions.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// currentPatient loads the signed-in patient, evicting sessions whose
// account has vanished or been deactivated under them.
func (h *Handler) currentPatient(c *gin.Context) (*model.Patient, bool) {
	sess := middleware.CurrentSession(c)

	patient, err := h.patientSvc.Get(c.Request.Context(), sess.PatientID)
	if err == nil && !patient.IsActive {
		err = repository.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if derr := h.sessionMgr.Destroy(c.Request.Context(), sess); derr != nil {
				log.Error().Err(derr).Msg("failed to destroy orphan session")
			}
			h.sessions.ClearCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return nil, false
		}
		log.Error().Err(err).Msg("failed to load patient")
		handler.Render(c, h.sessionMgr, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Something went wrong",
		})
		c.Abort()
		return nil, false
	}
	return patient, true
}

func (h *Handler) flashAndReturn(c *gin.Context, sess *model.Session, level, message string) {
	sess.AddFlash(level, message)
	h.saveAndRedirect(c, sess, "/profile")
}

func (h *Handler) saveAndRedirect(c *gin.Context, sess *model.Session, target string) {
	if err := h.sessionMgr.Save(c.Request.Context(), sess); err != nil {
		log.Error().Err(err).Msg("failed to save session")
	}
	c.Redirect(http.StatusSeeOther, target)
}

func profileForm(p *model.Patient) *model.ProfileForm {
	return &model.ProfileForm{
		FirstName:             p.FirstName,
		LastName:              p.LastName,
		Phone:                 p.Phone,
		Address:               p.Address,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
	}
}
