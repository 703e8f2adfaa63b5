package handlers

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"pix-checkout-api/config"
	"pix-checkout-api/models"
)

const (
	sessionName = "checkout-session"
	customerKey = "customer_data"
)

func init() {
	gob.Register(models.Customer{})
}

// SessionStore keeps the visitor's customer data between page view and /generate-pix.
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(cfg config.SessionConfig) *SessionStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   cfg.MaxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// Customer returns the customer saved for this visitor, or the default one.
func (s *SessionStore) Customer(r *http.Request) (models.Customer, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old secret lands here; treat it as a fresh visitor.
		zap.L().Debug("discarding unreadable session", zap.Error(err))
		return models.DefaultCustomer(), false
	}

	customer, ok := session.Values[customerKey].(models.Customer)
	if !ok {
		return models.DefaultCustomer(), false
	}
	return customer, true
}

func (s *SessionStore) SaveCustomer(w http.ResponseWriter, r *http.Request, customer models.Customer) error {
	// Get returns a usable new session alongside a decode error.
	session, _ := s.store.Get(r, sessionName)
	session.Values[customerKey] = customer
	return session.Save(r, w)
}
