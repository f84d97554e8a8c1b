package rest

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dfryer1193/sitepress/api"
	"github.com/dfryer1193/sitepress/auth"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/dfryer1193/sitepress/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	oauthStateCookie = "oauth-state"
	oauthStateMaxAge = 10 * 60
)

func (a *Api) Probe(c *gin.Context) {
	c.JSON(http.StatusOK, a.gate.Probe(c.Request.Context()))
}

func (a *Api) LocalLogin(c *gin.Context) {
	// A missing or malformed body is an empty password, so an unconfigured secret is still reported as such
	var req api.LocalLoginRequest
	_ = c.ShouldBindJSON(&req)

	token, _, err := a.gate.LocalLogin(req.Password)
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		log.Error().Err(err).Msg("Local login attempted without configuration")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Local auth not configured"})
		return
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid password"})
		return
	case err != nil:
		log.Error().Err(err).Msg("Local login failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Authentication failed"})
		return
	}

	a.setSessionCookie(c, token)
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (a *Api) GithubLogin(c *gin.Context) {
	state := uuid.NewString()
	loginURL, err := a.gate.LoginURL(state)
	if err != nil {
		respondError(c, err, "Failed to start GitHub login")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth/github", "", a.cfg.IsProduction(), true)
	c.Redirect(http.StatusFound, loginURL)
}

func (a *Api) GithubCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/auth/github", "", a.cfg.IsProduction(), true)
	if err != nil || expected == "" || c.Query("state") != expected {
		log.Warn().Msg("GitHub callback with missing or mismatched state")
		a.redirectToLogin(c, "OAuthCallback")
		return
	}

	token, session, err := a.gate.IdentityLogin(c.Request.Context(), c.Query("code"))
	switch {
	case errors.Is(err, auth.ErrAccessDenied):
		a.redirectToLogin(c, "AccessDenied")
		return
	case err != nil:
		log.Error().Err(err).Msg("GitHub login failed")
		a.redirectToLogin(c, "OAuthCallback")
		return
	}

	log.Info().Str("sub", session.Subject).Msg("Admin signed in with GitHub")
	a.setSessionCookie(c, token)
	c.Redirect(http.StatusFound, a.cfg.Auth.AdminRedirectPath)
}

func (a *Api) Session(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a *Api) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", a.cfg.IsProduction(), true)
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (a *Api) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", a.cfg.IsProduction(), true)
}

func (a *Api) redirectToLogin(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, a.cfg.Auth.LoginPath+"?error="+url.QueryEscape(reason))
}
