package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

type registerRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ReferralCode string `json:"referral_code"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type shareReferralRequest struct {
	Email string `json:"email" binding:"required"`
}

type loginResponse struct {
	Access    string       `json:"access"`
	Refresh   string       `json:"refresh"`
	ExpiresIn int          `json:"expires_in"`
	User      userResponse `json:"user"`
}

type referralResponse struct {
	Code      string `json:"referral_code"`
	Credits   string `json:"credits"`
	Referrals int    `json:"referrals"`
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, nil, domain.Invalid("", "invalid request body: %v", err))
		return false
	}
	return true
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.UserSvc.Register(c.Request.Context(), usersvc.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUser(*u)})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, err := h.UserSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		ExpiresIn: pair.ExpiresIn,
		User:      toUser(*u),
	})
}

func (h *handlers) logout(c *gin.Context) {
	var req logoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.UserSvc.Logout(c.Request.Context(), c.GetString(accessTokenKey), req.RefreshToken); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusResetContent)
}

func (h *handlers) refreshToken(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	access, err := h.UserSvc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *handlers) verifyToken(c *gin.Context) {
	var req verifyRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.UserSvc.Verify(c.Request.Context(), req.Token); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.UserSvc.ListUsers(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getReferral(c *gin.Context) {
	summary, err := h.UserSvc.Referral(c.Request.Context(), principal(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, referralResponse{
		Code:      summary.Code,
		Credits:   summary.Credits.StringFixed(2),
		Referrals: summary.Referrals,
	})
}

func (h *handlers) shareReferral(c *gin.Context) {
	var req shareReferralRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.UserSvc.ShareReferral(c.Request.Context(), principal(c).UserID, req.Email); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "referral code sent"})
}
