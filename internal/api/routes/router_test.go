package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/memory"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/handlers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/routes"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/services"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/security"
)

type apiFixture struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
}

func setupAPI(t *testing.T, checks map[string]handlers.HealthCheck) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	marketplace := services.NewMarketplace(
		store,
		security.NewBcryptHasher(bcrypt.MinCost),
		security.NewJWTIssuer("test-secret", time.Hour),
		policy.New(true),
	)
	router := routes.NewRouter(marketplace, checks, []string{"*"}, nil)
	return &apiFixture{t: t, handler: router.SetupRoutes(), store: store}
}

func (f *apiFixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// register creates a user and returns its id and an access token
func (f *apiFixture) register(email string) (string, string) {
	f.t.Helper()
	w := f.do("POST", "/api/v1/users", `{"email":"`+email+`","first_name":"Ada","last_name":"Lovelace","password":"secret"}`, "")
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(f.t, w)["id"].(string)
	return id, f.login(email, "secret")
}

func (f *apiFixture) login(email, password string) string {
	f.t.Helper()
	w := f.do("POST", "/api/v1/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	return decode(f.t, w)["access_token"].(string)
}

// admin bootstraps an administrator directly in the store
func (f *apiFixture) admin() string {
	f.t.Helper()
	id, _ := f.register("admin@example.com")
	ctx := context.Background()
	user, err := f.store.Repositories().Users.GetByID(ctx, id)
	require.NoError(f.t, err)
	user.IsAdmin = true
	require.NoError(f.t, f.store.Repositories().Users.Update(ctx, user))
	return f.login("admin@example.com", "secret")
}

func (f *apiFixture) createPlace(token, body string) string {
	f.t.Helper()
	w := f.do("POST", "/api/v1/places", body, token)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(f.t, w)["id"].(string)
}

const loftJSON = `{"title":"Loft","description":"Bright","price":120.5,"latitude":48.85,"longitude":2.35}`

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		f := setupAPI(t, map[string]handlers.HealthCheck{
			"storage": func(context.Context) error { return nil },
		})
		w := f.do("GET", "/health", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["status"])
	})

	t.Run("degraded", func(t *testing.T) {
		f := setupAPI(t, map[string]handlers.HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		w := f.do("GET", "/health", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decode(t, w)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "connection refused", body["components"].(map[string]interface{})["redis"])
	})
}

func TestUsers_RegisterAndLogin(t *testing.T) {
	f := setupAPI(t, nil)

	w := f.do("POST", "/api/v1/users", `{"email":" Ada@Example.com ","first_name":"Ada","last_name":"Lovelace","password":"secret"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "ada@example.com", body["email"])
	assert.NotContains(t, w.Body.String(), "password")

	w = f.do("POST", "/api/v1/users", `{"email":"ADA@example.com","first_name":"Ada","last_name":"Twin","password":"secret"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email", decode(t, w)["field"])

	w = f.do("POST", "/api/v1/auth/login", `{"email":"ada@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := f.login("ADA@example.com", "secret")
	assert.NotEmpty(t, token)
}

func TestUsers_ValidationErrorsListEveryField(t *testing.T) {
	f := setupAPI(t, nil)

	w := f.do("POST", "/api/v1/users", `{"email":"not-an-email","first_name":"  "}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := map[string]bool{}
	for _, fe := range decode(t, w)["fields"].([]interface{}) {
		fields[fe.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["first_name"])
	assert.True(t, fields["last_name"])
	assert.True(t, fields["password"])
}

func TestUsers_CannotGrantAdminToSelf(t *testing.T) {
	f := setupAPI(t, nil)
	id, token := f.register("ada@example.com")

	w := f.do("PUT", "/api/v1/users/"+id, `{"is_admin":true}`, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	f := setupAPI(t, nil)

	w := f.do("POST", "/api/v1/places", loftJSON, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/v1/places", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaces_CreateRequiresIdentity(t *testing.T) {
	f := setupAPI(t, nil)

	w := f.do("POST", "/api/v1/places", loftJSON, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaces_CreateDefaultsOwner(t *testing.T) {
	f := setupAPI(t, nil)
	hostID, token := f.register("host@example.com")

	w := f.do("POST", "/api/v1/places", loftJSON, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, hostID, body["owner_id"])
	assert.Equal(t, 120.5, body["price"])
}

func TestPlaces_RejectsInvalidCoordinates(t *testing.T) {
	f := setupAPI(t, nil)
	_, token := f.register("host@example.com")

	w := f.do("POST", "/api/v1/places", `{"title":"Loft","price":0,"latitude":91,"longitude":2}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decode(t, w)["fields"], 2)
}

func TestPlaces_UnknownAmenityIsNotFound(t *testing.T) {
	f := setupAPI(t, nil)
	_, token := f.register("host@example.com")

	w := f.do("POST", "/api/v1/places", `{"title":"Loft","price":10,"latitude":1,"longitude":2,"amenity_ids":["ghost"]}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "amenity", body["kind"])
	assert.Equal(t, "ghost", body["id"])
}

func TestPlaces_OnlyOwnerMayUpdate(t *testing.T) {
	f := setupAPI(t, nil)
	_, hostToken := f.register("host@example.com")
	_, guestToken := f.register("guest@example.com")
	placeID := f.createPlace(hostToken, loftJSON)

	w := f.do("PUT", "/api/v1/places/"+placeID, `{"price":99}`, guestToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_owner", decode(t, w)["reason"])

	w = f.do("PUT", "/api/v1/places/"+placeID, `{"price":99}`, hostToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 99.0, decode(t, w)["price"])
}

func TestPlaces_AttachAndDetachAmenity(t *testing.T) {
	f := setupAPI(t, nil)
	adminToken := f.admin()
	_, hostToken := f.register("host@example.com")
	_, guestToken := f.register("guest@example.com")
	placeID := f.createPlace(hostToken, loftJSON)

	w := f.do("POST", "/api/v1/amenities", `{"name":"Wifi"}`, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)
	amenityID := decode(t, w)["id"].(string)
	linkPath := "/api/v1/places/" + placeID + "/amenities"

	w = f.do("POST", linkPath, `{"amenity_id":"`+amenityID+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do("POST", linkPath, `{"amenity_id":"`+amenityID+`"}`, guestToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_owner", decode(t, w)["reason"])

	w = f.do("POST", linkPath, `{}`, hostToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("POST", linkPath, `{"amenity_id":"ghost"}`, hostToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", linkPath, `{"amenity_id":"`+amenityID+`"}`, hostToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{amenityID}, decode(t, w)["amenity_ids"])

	w = f.do("GET", linkPath, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = f.do("DELETE", linkPath+"/"+amenityID, "", guestToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do("DELETE", linkPath+"/"+amenityID, "", hostToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode(t, w)["amenity_ids"])
}

func TestReviews_Lifecycle(t *testing.T) {
	f := setupAPI(t, nil)
	_, hostToken := f.register("host@example.com")
	guestID, guestToken := f.register("guest@example.com")
	placeID := f.createPlace(hostToken, loftJSON)

	// owners cannot review their own place
	w := f.do("POST", "/api/v1/places/"+placeID+"/reviews", `{"text":"Mine","rating":5}`, hostToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "self_review", decode(t, w)["rule"])

	// ratings keep their literal, so 4.5 is rejected rather than truncated
	w = f.do("POST", "/api/v1/reviews", `{"place_id":"`+placeID+`","text":"Nice","rating":4.5}`, guestToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("POST", "/api/v1/reviews", `{"place_id":"`+placeID+`","text":"Nice","rating":4}`, guestToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode(t, w)
	assert.Equal(t, guestID, review["user_id"])
	reviewID := review["id"].(string)

	w = f.do("POST", "/api/v1/places/"+placeID+"/reviews", `{"text":"Again","rating":3}`, guestToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do("GET", "/api/v1/places/"+placeID+"/reviews", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = f.do("PUT", "/api/v1/reviews/"+reviewID, `{"rating":5}`, hostToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do("DELETE", "/api/v1/reviews/"+reviewID, "", guestToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do("GET", "/api/v1/reviews/"+reviewID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviews_PathAndBodyPlaceMustAgree(t *testing.T) {
	f := setupAPI(t, nil)
	_, hostToken := f.register("host@example.com")
	_, guestToken := f.register("guest@example.com")
	placeID := f.createPlace(hostToken, loftJSON)

	w := f.do("POST", "/api/v1/places/"+placeID+"/reviews", `{"place_id":"other","text":"Nice","rating":4}`, guestToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAmenities_AdminOnly(t *testing.T) {
	f := setupAPI(t, nil)
	_, userToken := f.register("user@example.com")
	adminToken := f.admin()

	w := f.do("POST", "/api/v1/amenities", `{"name":"Wifi"}`, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do("POST", "/api/v1/amenities", `{"name":"Wifi"}`, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do("POST", "/api/v1/amenities", `{"name":"WIFI"}`, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do("GET", "/api/v1/amenities", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)
}

func TestPlaces_DetailsAndCascade(t *testing.T) {
	f := setupAPI(t, nil)
	adminToken := f.admin()
	hostID, hostToken := f.register("host@example.com")
	_, guestToken := f.register("guest@example.com")

	w := f.do("POST", "/api/v1/amenities", `{"name":"Wifi"}`, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)
	amenityID := decode(t, w)["id"].(string)

	placeID := f.createPlace(hostToken, `{"title":"Loft","price":80,"latitude":1,"longitude":2,"amenity_ids":["`+amenityID+`"]}`)
	w = f.do("POST", "/api/v1/places/"+placeID+"/reviews", `{"text":"Great","rating":5}`, guestToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do("GET", "/api/v1/places/"+placeID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	details := decode(t, w)
	assert.Equal(t, hostID, details["owner"].(map[string]interface{})["id"])
	assert.Len(t, details["amenities"], 1)
	reviews := details["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	assert.Equal(t, "Ada Lovelace", reviews[0].(map[string]interface{})["user_name"])

	w = f.do("GET", "/api/v1/places/"+placeID+"/amenities", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = f.do("GET", "/api/v1/places?details=true", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = f.do("DELETE", "/api/v1/places/"+placeID, "", guestToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do("DELETE", "/api/v1/places/"+placeID, "", hostToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do("GET", "/api/v1/places/"+placeID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do("GET", "/api/v1/reviews?place_id="+placeID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))
}

func TestPlaces_SearchFallsBackToRepository(t *testing.T) {
	f := setupAPI(t, nil)
	_, token := f.register("host@example.com")
	f.createPlace(token, `{"title":"Sea view","price":150,"latitude":1,"longitude":2}`)
	f.createPlace(token, `{"title":"City loft","price":60,"latitude":1,"longitude":2}`)

	w := f.do("GET", "/api/v1/places/search?q=loft&max_price=100", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 1.0, body["count"])

	w = f.do("GET", "/api/v1/places/search?min_price=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaging_RejectsNegativeValues(t *testing.T) {
	f := setupAPI(t, nil)

	w := f.do("GET", "/api/v1/users?limit=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit", decode(t, w)["fields"].([]interface{})[0].(map[string]interface{})["field"])
}

func TestMalformedJSON(t *testing.T) {
	f := setupAPI(t, nil)

	w := f.do("POST", "/api/v1/users", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", decode(t, w)["type"])
}

func TestCORSPreflight(t *testing.T) {
	f := setupAPI(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/places", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
