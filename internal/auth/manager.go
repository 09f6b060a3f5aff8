// Package auth handles dashboard sign-in (Google OAuth with in-memory
// sessions) and machine access (bearer service tokens and the import webhook
// shared secret).
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/clinichq/admin-api/internal/config"
	"github.com/clinichq/admin-api/internal/pkg/logger"
)

// Roles assigned to authenticated callers. Dashboard sessions get RoleAdmin;
// service tokens carry whatever role config maps them to.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleService    = "service"
)

// GoogleUserInfo is the profile Google returns for an access token.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"`
}

// Session is an authenticated dashboard user.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager handles Google OAuth login and session tracking.
type Manager struct {
	config       config.AuthConfig
	oauth2Config *oauth2.Config
	sessions     map[string]*Session
	sessionMu    sync.RWMutex
}

// NewManager creates an authentication manager. baseURL is the externally
// visible origin used to build the OAuth redirect URL.
func NewManager(cfg config.AuthConfig, baseURL string) *Manager {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  baseURL + "/auth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &Manager{
		config:       cfg,
		oauth2Config: oauth2Config,
		sessions:     make(map[string]*Session),
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HandleLogin starts the Google OAuth flow.
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := m.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	if m.config.AllowedDomain != "" {
		url += "&hd=" + m.config.AllowedDomain
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback finishes the OAuth flow and creates a session.
func (m *Manager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		logger.Warn("oauth state mismatch")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		logger.Warn("google returned oauth error", "error", errMsg)
		http.Redirect(w, r, "/?error="+errMsg, http.StatusTemporaryRedirect)
		return
	}

	token, err := m.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("oauth code exchange failed", "error", err)
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	userInfo, err := m.getUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		logger.Error("failed to fetch google user info", "error", err)
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	if m.config.AllowedDomain != "" {
		parts := strings.Split(userInfo.Email, "@")
		if len(parts) != 2 || parts[1] != m.config.AllowedDomain {
			logger.Warn("login from disallowed domain", "email", userInfo.Email)
			http.Redirect(w, r, "/?error=domain_not_allowed", http.StatusTemporaryRedirect)
			return
		}
	}

	sessionID, err := randomToken()
	if err != nil {
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	session := &Session{
		UserID:    userInfo.ID,
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		Picture:   userInfo.Picture,
		Role:      RoleAdmin,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Duration(m.config.CookieMaxAge) * time.Second),
	}

	m.sessionMu.Lock()
	m.sessions[sessionID] = session
	m.sessionMu.Unlock()

	logger.Info("user logged in", "email", userInfo.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   m.config.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout removes the session and clears the cookie.
func (m *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(m.config.CookieName); err == nil {
		m.sessionMu.Lock()
		delete(m.sessions, cookie.Value)
		m.sessionMu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{Name: m.config.CookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleUserInfo returns the current user's profile as JSON.
func (m *Manager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	session := m.GetSession(r)
	w.Header().Set("Content-Type", "application/json")
	if session == nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": false})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"authenticated": true,
		"user": map[string]string{
			"id":      session.UserID,
			"email":   session.Email,
			"name":    session.Name,
			"picture": session.Picture,
			"role":    session.Role,
		},
	})
}

// GetSession returns the session for the request, or nil. Expired sessions
// are evicted on access.
func (m *Manager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return nil
	}

	m.sessionMu.RLock()
	session, exists := m.sessions[cookie.Value]
	m.sessionMu.RUnlock()
	if !exists {
		return nil
	}

	if time.Now().After(session.ExpiresAt) {
		m.sessionMu.Lock()
		delete(m.sessions, cookie.Value)
		m.sessionMu.Unlock()
		return nil
	}
	return session
}

// AddSession registers a session under the given id. Used in tests.
func (m *Manager) AddSession(id string, s *Session) {
	m.sessionMu.Lock()
	m.sessions[id] = s
	m.sessionMu.Unlock()
}

// ResolveToken maps a bearer service token to its configured role.
func (m *Manager) ResolveToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	role, ok := m.config.ServiceTokens[token]
	return role, ok
}

// CheckImportSecret reports whether the webhook shared secret matches. An
// unconfigured secret never matches, so the token path stays mandatory.
func (m *Manager) CheckImportSecret(secret string) bool {
	return m.config.ImportSecret != "" && secret == m.config.ImportSecret
}

// CleanupExpiredSessions evicts expired sessions every 5 minutes until ctx
// is cancelled.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sessionMu.Lock()
				now := time.Now()
				for id, session := range m.sessions {
					if now.After(session.ExpiresAt) {
						delete(m.sessions, id)
					}
				}
				m.sessionMu.Unlock()
			}
		}
	}()
}

func (m *Manager) getUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo?access_token="+accessToken, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &userInfo, nil
}
