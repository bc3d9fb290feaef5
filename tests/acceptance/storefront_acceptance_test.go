package acceptance

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// StorefrontAcceptanceTestSuite walks a shopper through sign-up, checkout, booking and enquiry
// against a listening server
type StorefrontAcceptanceTestSuite struct {
	suite.Suite
	app     *testutil.App
	auth0   *testutil.Auth0Server
	server  *httptest.Server
	rims    *models.Product
	service *models.Service
}

func (suite *StorefrontAcceptanceTestSuite) SetupTest() {
	suite.app = testutil.NewApp(suite.T(), testutil.BearerAuth())

	suite.auth0 = testutil.NewAuth0Server()
	suite.T().Cleanup(suite.auth0.Close)
	suite.app.Cfg.Auth0Domain = suite.auth0.URL

	suite.server = httptest.NewServer(suite.app.Router)
	suite.T().Cleanup(suite.server.Close)

	suite.rims = suite.app.CreateProduct(suite.T(), "Alloy Rim 15in", 4500, 8)
	suite.service = suite.app.CreateService(suite.T(), "Tuning", 2)
	suite.app.CreateAdmin(suite.T(), "staff@shahzaibautos.pk", models.RoleStaff)
}

func (suite *StorefrontAcceptanceTestSuite) signUp(token string) *client {
	suite.auth0.AddUser(token, &services.Auth0UserInfo{
		Sub:         token,
		Email:       "Bilal@Example.com",
		Name:        "Bilal Ahmed",
		PhoneNumber: "0321-4567890",
	})
	shopper := newClient(suite.T(), suite.server)
	shopper.token = token

	resp := shopper.do(http.MethodPost, "/api/v1/customers", nil)
	suite.Require().Equal(http.StatusCreated, resp.status, string(resp.body))
	return shopper
}

func (suite *StorefrontAcceptanceTestSuite) TestShopperJourney() {
	visitor := newClient(suite.T(), suite.server)

	resp := visitor.do(http.MethodGet, "/api/v1/products", nil)
	suite.Require().Equal(http.StatusOK, resp.status)
	suite.Len(resp.list(suite.T()), 1)
	suite.Contains(resp.json(suite.T()), "pagination")

	shopper := suite.signUp("auth0|bilal")
	resp = shopper.do(http.MethodGet, "/api/v1/customers/me", nil)
	suite.Equal(http.StatusOK, resp.status)
	suite.Equal("bilal@example.com", resp.data(suite.T())["email"])

	resp = shopper.do(http.MethodPut, "/api/v1/customers/me", map[string]string{"address": "12 Mall Road", "city": "Lahore"})
	suite.Equal(http.StatusOK, resp.status, string(resp.body))

	resp = shopper.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"items":            []map[string]interface{}{{"product_id": suite.rims.ID, "quantity": 2}},
		"shipping_name":    "Bilal Ahmed",
		"shipping_phone":   "0321-4567890",
		"shipping_address": "12 Mall Road",
		"shipping_city":    "Lahore",
	})
	suite.Require().Equal(http.StatusCreated, resp.status, string(resp.body))
	order := resp.data(suite.T())
	suite.Equal(float64(9250), order["total"])
	suite.Equal("COD", order["payment_method"])

	resp = shopper.do(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"service_id": suite.service.ID,
		"date":       "2099-01-05",
		"slot":       "14:00",
	})
	suite.Require().Equal(http.StatusCreated, resp.status, string(resp.body))

	// the shop confirms by phone and updates the dashboard
	staff := newClient(suite.T(), suite.server)
	resp = staff.do(http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "staff@shahzaibautos.pk", "password": testutil.AdminPassword})
	suite.Require().Equal(http.StatusOK, resp.status, string(resp.body))
	resp = staff.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%v/status", order["id"]), map[string]string{"status": "CONFIRMED"})
	suite.Require().Equal(http.StatusOK, resp.status, string(resp.body))

	resp = shopper.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%v", order["id"]), nil)
	suite.Equal("CONFIRMED", resp.data(suite.T())["status"])

	resp = shopper.do(http.MethodGet, "/api/v1/bookings", nil)
	suite.Len(resp.list(suite.T()), 1)
}

func (suite *StorefrontAcceptanceTestSuite) TestSignUpTwice() {
	shopper := suite.signUp("auth0|bilal")

	resp := shopper.do(http.MethodPost, "/api/v1/customers", nil)
	suite.Equal(http.StatusConflict, resp.status)
	suite.Equal("CUSTOMER_EXISTS", testutil.ErrorCode(suite.T(), resp.body))
}

func (suite *StorefrontAcceptanceTestSuite) TestSignUpWithUnknownAuth0User() {
	shopper := newClient(suite.T(), suite.server)
	shopper.token = "auth0|ghost"

	resp := shopper.do(http.MethodPost, "/api/v1/customers", nil)
	suite.Equal(http.StatusBadGateway, resp.status)
	suite.Equal("AUTH0_ERROR", testutil.ErrorCode(suite.T(), resp.body))
}

func (suite *StorefrontAcceptanceTestSuite) TestContactForm() {
	visitor := newClient(suite.T(), suite.server)

	resp := visitor.do(http.MethodPost, "/api/v1/leads", map[string]string{
		"name":    "Hamza",
		"phone":   "0300-7654321",
		"subject": "Body kit quote",
		"message": "Do you have a body kit for a 2018 Civic?",
		"source":  "quote",
	})
	suite.Require().Equal(http.StatusCreated, resp.status, string(resp.body))
	suite.Equal("NEW", resp.data(suite.T())["status"])
	suite.Len(suite.app.Email.Sent(), 1)
	suite.Len(suite.app.Events.OfType(services.EventLeadCreated), 1)

	resp = visitor.do(http.MethodPost, "/api/v1/leads", map[string]string{"name": "Anon", "message": "Call me"})
	suite.Equal(http.StatusBadRequest, resp.status)
	suite.Equal("VALIDATION_ERROR", testutil.ErrorCode(suite.T(), resp.body))
}

func (suite *StorefrontAcceptanceTestSuite) TestCORSFromStorefrontOrigin() {
	req, err := http.NewRequest(http.MethodGet, suite.server.URL+"/api/v1/products", nil)
	suite.Require().NoError(err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	suite.Equal("true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestStorefrontAcceptanceSuite(t *testing.T) {
	suite.Run(t, new(StorefrontAcceptanceTestSuite))
}
