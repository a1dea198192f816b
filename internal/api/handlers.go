// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chainfaucet/faucet/internal/apperror"
	"github.com/chainfaucet/faucet/internal/chain"
	"github.com/chainfaucet/faucet/internal/identity"
	"github.com/chainfaucet/faucet/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperror.Error); ok {
		writeError(w, appErr.StatusCode(), appErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPageHTML, s.cfg.PublicNodeURL, s.cfg.DispenseAmount)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	up := s.node.Healthy(r.Context())
	body := map[string]any{
		"up":        true,
		"uptime_ms": time.Since(s.bootTime).Milliseconds(),
		"fuel-core": up,
	}
	if !up {
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDispenseInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"amount":   s.cfg.DispenseAmount,
		"asset_id": chain.BaseAsset.Hex(),
	})
}

// dispenseRequest covers both admission-flow request bodies: the PoW
// flow supplies salt/nonce (address comes from the session), the auth
// flow supplies address directly.
type dispenseRequest struct {
	Salt    string `json:"salt"`
	Nonce   string `json:"nonce"`
	Address string `json:"address"`
}

type dispenseResponse struct {
	Status string `json:"status"`
	Tokens uint64 `json:"tokens"`
	TxID   string `json:"tx_id"`
}

func (s *Server) handleDispense(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := "error"
	defer func() {
		s.metrics.DispenseRequestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.DispenseDurationSecs.Observe(time.Since(start).Seconds())
		s.metrics.TrackerSize.Set(float64(s.service.TrackerLen()))
		s.metrics.SessionStoreSize.Set(float64(s.sessions.Len()))
	}()

	var req dispenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		outcome = "bad_request"
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	var (
		recipient chain.Address
		id        identity.Identity
	)

	if req.Salt != "" {
		recipientAddr, ok, err := verifyPow(s.sessions, req.Salt, req.Nonce)
		if err != nil {
			if errors.Is(err, errUnknownSalt) {
				outcome = "unknown_salt"
				writeError(w, http.StatusNotFound, "Salt does not exist")
				return
			}
			outcome = "bad_request"
			writeError(w, http.StatusBadRequest, "invalid salt")
			return
		}
		if !ok {
			outcome = "invalid_pow"
			writeError(w, http.StatusNotFound, "Invalid proof of work")
			return
		}
		recipient = recipientAddr
		id = identity.FromAddress(recipient)
	} else {
		userID, ok := userIDFromCookie(r)
		if !ok {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, "missing session user")
			return
		}
		addr, err := chain.ParseAddress(req.Address)
		if err != nil {
			outcome = "bad_request"
			writeError(w, http.StatusBadRequest, "invalid address")
			return
		}
		recipient = addr
		id = identity.FromUserID(userID)
	}

	result, err := s.service.Dispense(r.Context(), id, recipient)
	if err != nil {
		outcome = "pipeline_error"
		writeAppError(w, err)
		return
	}

	outcome = "success"
	writeJSON(w, http.StatusCreated, dispenseResponse{
		Status: "Success",
		Tokens: result.Tokens,
		TxID:   result.TxID.Hex(),
	})
}

type createSessionRequest struct {
	Address string `json:"address"`
	Captcha string `json:"captcha"`
}

type createSessionResponse struct {
	Status     string `json:"status"`
	Salt       string `json:"salt"`
	Difficulty uint   `json:"difficulty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	addr, err := chain.ParseAddress(req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	if ok, err := s.captcha.Verify(r.Context(), req.Captcha); err != nil || !ok {
		writeError(w, http.StatusBadRequest, "captcha verification failed")
		return
	}

	salt := randomSalt()
	s.sessions.Put(salt, session.Entry{Recipient: addr, Difficulty: s.cfg.PowDifficulty})
	s.metrics.SessionStoreSize.Set(float64(s.sessions.Len()))

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Status:     "Created",
		Salt:       hex.EncodeToString(salt[:]),
		Difficulty: s.cfg.PowDifficulty,
	})
}

func (s *Server) handleLookupSession(w http.ResponseWriter, r *http.Request) {
	saltHex := r.URL.Query().Get("salt")
	salt, err := decodeSalt(saltHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed salt")
		return
	}
	entry, ok := s.sessions.Get(salt)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": entry.Recipient.Hex()})
}

type validateSessionRequest struct {
	Value string `json:"value"`
}

const sessionCookieName = "faucet_session"

func (s *Server) handleValidateSession(w http.ResponseWriter, r *http.Request) {
	var req validateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	userID, err := s.auth.GetUserSession(r.Context(), req.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    userID,
		HttpOnly: true,
		Path:     "/",
	})
	writeJSON(w, http.StatusOK, map[string]string{"user": userID})
}

func (s *Server) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", MaxAge: -1, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func userIDFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func decodeSalt(saltHex string) (session.Salt, error) {
	var salt session.Salt
	b, err := hex.DecodeString(saltHex)
	if err != nil || len(b) != len(salt) {
		return salt, fmt.Errorf("invalid salt")
	}
	copy(salt[:], b)
	return salt, nil
}

// randomSalt generates a 32-byte session salt from two concatenated
// UUIDv4s, reusing the teacher's google/uuid dependency instead of
// reaching for crypto/rand directly.
func randomSalt() session.Salt {
	var salt session.Salt
	a := uuid.New()
	b := uuid.New()
	copy(salt[:16], a[:])
	copy(salt[16:], b[:])
	return salt
}
