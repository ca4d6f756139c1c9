package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipzone/clipzone/internal/middleware"
	"github.com/clipzone/clipzone/pkg/models"
)

type registerRequest struct {
	Name         string              `json:"name" binding:"required"`
	Email        string              `json:"email" binding:"required,email"`
	Password     string              `json:"password" binding:"required,min=8"`
	Role         string              `json:"role"`
	ProfilePic   string              `json:"profile_pic"`
	PortfolioURL string              `json:"portfolio_url"`
	SocialLinks  *models.SocialLinks `json:"social_links"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register endpoint
func (api *API) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.RoleClipper
	if req.Role != "" {
		parsed, ok := models.ParseRole(req.Role)
		if !ok || parsed == models.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be creator or clipper"})
			return
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
		ProfilePic:   req.ProfilePic,
		PortfolioURL: req.PortfolioURL,
	}
	if role == models.RoleCreator {
		account.CPM = models.DefaultCPM
	}
	if req.SocialLinks != nil {
		account.SocialLinks = *req.SocialLinks
	}

	if err := api.accounts.CreateAccount(c.Request.Context(), account); err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(account, api.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"account": account,
	})
}

// Login endpoint
func (api *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	account, err := api.accounts.GetAccountByEmail(c.Request.Context(), email)
	if err != nil {
		// A missing account and a bad password look the same to the caller.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(account, api.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"account": account,
	})
}

// Me endpoint returns the authenticated account profile
func (api *API) me(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	account, err := api.accounts.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
