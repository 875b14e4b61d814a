package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"niftyops/internal/authstate"
	"niftyops/internal/fyers"
	"niftyops/internal/quote"
)

func newRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	{
		api.GET("/quotes", app.handleQuotes)
		api.GET("/breadth", app.handleBreadth)
		api.POST("/connect", app.handleConnect)
		api.POST("/disconnect", app.handleDisconnect)
		api.GET("/auth/login", app.handleAuthLogin)
		api.GET("/auth/callback", app.handleAuthCallback)
	}

	r.GET("/ws", func(c *gin.Context) {
		app.hub.ServeWS(c.Writer, c.Request)
	})
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (a *App) handleQuotes(c *gin.Context) {
	stocks, _, lastErr := a.latest()
	c.JSON(http.StatusOK, gin.H{
		"connected": a.connected(),
		"quotes":    stocks,
		"error":     lastErr,
	})
}

func (a *App) handleBreadth(c *gin.Context) {
	_, stats, lastErr := a.latest()
	c.JSON(http.StatusOK, gin.H{
		"connected": a.connected(),
		"breadth":   stats,
		"error":     lastErr,
	})
}

type connectRequest struct {
	AppID       string `json:"app_id"`
	AccessToken string `json:"access_token"`
	Simulated   bool   `json:"simulated"`
}

// handleConnect is the manual-entry path: credentials pasted directly into
// the configuration form.
func (a *App) handleConnect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if !req.Simulated && (req.AppID == "" || req.AccessToken == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_id and access_token required for live mode"})
		return
	}
	a.connect(fyers.Credential{AppID: req.AppID, AccessToken: req.AccessToken, Simulated: req.Simulated})
	c.JSON(http.StatusOK, gin.H{"connected": true, "simulated": req.Simulated})
}

func (a *App) handleDisconnect(c *gin.Context) {
	a.disconnect()
	c.JSON(http.StatusOK, gin.H{"connected": false})
}

// handleAuthLogin writes the pending-auth slot and hands back the provider
// login URL for the browser redirect.
func (a *App) handleAuthLogin(c *gin.Context) {
	appID := strings.TrimSpace(c.Query("app_id"))
	secretID := strings.TrimSpace(c.Query("secret_id"))
	if appID == "" || secretID == "" {
		appID, secretID = a.cfg.Fyers.AppID, a.cfg.Fyers.SecretID
	}
	if appID == "" || secretID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_id and secret_id required"})
		return
	}

	redirectURI := a.cfg.Fyers.RedirectURI
	if err := a.pending.Put(c.Request.Context(), authstate.Pending{
		AppID:       appID,
		SecretID:    secretID,
		RedirectURI: redirectURI,
	}); err != nil {
		a.logger.Error("storing pending auth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store pending authorization"})
		return
	}

	state := fyers.NewState()
	c.JSON(http.StatusOK, gin.H{
		"login_url": a.client.LoginURL(appID, redirectURI, state),
		"state":     state,
	})
}

// handleAuthCallback is the redirect target: the provider returns either
// auth_code or error as a query parameter.
func (a *App) handleAuthCallback(c *gin.Context) {
	if provErr := c.Query("error"); provErr != "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider login failed: " + provErr})
		return
	}
	authCode := c.Query("auth_code")
	if authCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing auth_code"})
		return
	}

	if err := a.exchangeAndConnect(c.Request.Context(), authCode); err != nil {
		a.logger.Warn("token exchange failed", zap.Error(err))
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, quote.ErrCredentialRejected):
			status = http.StatusUnauthorized
		case strings.Contains(err.Error(), "no pending authorization"):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}
