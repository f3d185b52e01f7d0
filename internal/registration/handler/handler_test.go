package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"evidgate/internal/registration/models"
	"evidgate/internal/registration/service"
	"evidgate/internal/registration/store"
	"evidgate/internal/wallet"
)

type HandlerSuite struct {
	suite.Suite
	remote *store.InMemory
	local  *store.InMemory
	server *httptest.Server
}

func (s *HandlerSuite) SetupTest() {
	s.remote = store.NewInMemory()
	s.local = store.NewInMemory()

	facade, err := store.NewFacade(s.remote, s.local)
	s.Require().NoError(err)

	adapter := wallet.NewAdapter(wallet.NewDemoProviderWithDelay(0))
	machine, err := service.New(facade, adapter)
	s.Require().NoError(err)

	router := chi.NewRouter()
	New(machine, slog.New(slog.DiscardHandler)).Register(router)
	s.server = httptest.NewServer(router)
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) seed(address string, role models.Role, active bool) {
	record := &models.UserRecord{
		WalletAddress:    address,
		FullName:         "Seeded User",
		Role:             role,
		Department:       "Ops",
		Jurisdiction:     "State",
		BadgeNumber:      "OP-1",
		IsActive:         active,
		RegistrationDate: time.Now(),
	}
	s.Require().NoError(s.remote.Put(context.Background(), record))
}

func (s *HandlerSuite) doJSON(method, path, body string) (*http.Response, map[string]json.RawMessage) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })

	var decoded map[string]json.RawMessage
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (s *HandlerSuite) stringField(body map[string]json.RawMessage, key string) string {
	var value string
	s.Require().NoError(json.Unmarshal(body[key], &value))
	return value
}

func (s *HandlerSuite) TestConnectResolvesDemoAccount() {
	resp, body := s.doJSON(http.MethodPost, "/session/connect", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("unregistered", s.stringField(body, "state"))
	s.Equal("registration", s.stringField(body, "section"))
}

func (s *HandlerSuite) TestStatusForRegisteredAdmin() {
	address := string(wallet.DemoAddress)
	s.seed(address, models.RoleAdmin, true)

	resp, body := s.doJSON(http.MethodGet, "/session/status/"+address, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("registered_admin", s.stringField(body, "state"))
	s.Equal("/admin", s.stringField(body, "destination"))
}

func (s *HandlerSuite) TestStatusRejectsBadAddress() {
	resp, body := s.doJSON(http.MethodGet, "/session/status/not-an-address", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("invalid_input", s.stringField(body, "error"))
}

func (s *HandlerSuite) TestRegister() {
	address := "0xAA00000000000000000000000000000000000001"

	s.Run("creates the record", func() {
		payload := `{
			"wallet_address": "` + address + `",
			"full_name": "Dana Reyes",
			"role": "investigator",
			"department": "Major Crimes",
			"jurisdiction": "State",
			"badge_number": "MC-1042"
		}`
		resp, body := s.doJSON(http.MethodPost, "/register", payload)
		s.Equal(http.StatusCreated, resp.StatusCode)
		s.Equal("registered_user", s.stringField(body, "state"))
		s.Equal("/dashboards/investigator", s.stringField(body, "destination"))

		_, err := s.local.Get(context.Background(), address)
		s.Require().NoError(err)
	})

	s.Run("accepts the numeric role encoding", func() {
		payload := `{
			"wallet_address": "` + address + `",
			"full_name": "Casey Nguyen",
			"role": 1
		}`
		resp, body := s.doJSON(http.MethodPost, "/register", payload)
		s.Equal(http.StatusCreated, resp.StatusCode)
		s.Equal("/dashboards/public", s.stringField(body, "destination"))
	})

	s.Run("refuses admin self-registration", func() {
		payload := `{
			"wallet_address": "` + address + `",
			"full_name": "Morgan Hale",
			"role": 8,
			"department": "IT",
			"jurisdiction": "Federal",
			"badge_number": "IT-7"
		}`
		resp, body := s.doJSON(http.MethodPost, "/register", payload)
		s.Equal(http.StatusForbidden, resp.StatusCode)
		s.Equal("policy_violation", s.stringField(body, "error"))
	})

	s.Run("refuses incomplete professional submissions", func() {
		payload := `{
			"wallet_address": "` + address + `",
			"full_name": "Dana Reyes",
			"role": "investigator"
		}`
		resp, body := s.doJSON(http.MethodPost, "/register", payload)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.Equal("invalid_input", s.stringField(body, "error"))
	})

	s.Run("refuses a missing wallet address", func() {
		payload := `{"full_name": "Dana Reyes", "role": "public_viewer"}`
		resp, _ := s.doJSON(http.MethodPost, "/register", payload)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestLogout() {
	s.Require().NoError(s.local.SetSessionPointer(context.Background(), "0xAB"))

	resp, body := s.doJSON(http.MethodPost, "/session/logout", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("disconnected", s.stringField(body, "state"))
	s.Equal("wallet", s.stringField(body, "section"))
}

func (s *HandlerSuite) TestResolveRole() {
	address := "0xBB00000000000000000000000000000000000002"

	s.Run("resolves a registered user", func() {
		s.seed(address, models.RoleAuditor, true)

		resp, body := s.doJSON(http.MethodGet, "/api/user/"+address, "")
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal("auditor", s.stringField(body, "role"))
		s.Equal("/dashboards/auditor", s.stringField(body, "dashboard"))
	})

	s.Run("404s an unknown address", func() {
		unknown := "0xCC00000000000000000000000000000000000003"
		resp, body := s.doJSON(http.MethodGet, "/api/user/"+unknown, "")
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.Equal("not_found", s.stringField(body, "error"))
	})

	s.Run("403s a deactivated account", func() {
		deactivated := "0xDD00000000000000000000000000000000000004"
		s.seed(deactivated, models.RoleInvestigator, false)

		resp, body := s.doJSON(http.MethodGet, "/api/user/"+deactivated, "")
		s.Equal(http.StatusForbidden, resp.StatusCode)
		s.Equal("account_deactivated", s.stringField(body, "error"))
	})
}

func (s *HandlerSuite) TestInvalidate() {
	address := "0xBB00000000000000000000000000000000000002"
	s.seed(address, models.RoleAdmin, true)

	payload := `{"accounts": ["` + address + `"]}`
	resp, body := s.doJSON(http.MethodPost, "/session/invalidate", payload)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("registered_admin", s.stringField(body, "state"))
}
