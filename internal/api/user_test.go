package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	router, _ := SetupTestRouter(t)

	payload := map[string]interface{}{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "supersecret",
	}
	w := PerformRequest(router, "POST", "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeBody(t, w.Body.Bytes())["token"])

	// Same email again is a field-keyed 400.
	w = PerformRequest(router, "POST", "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w.Body.Bytes()), "email")
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := SetupTestRouter(t)

	register := map[string]interface{}{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "supersecret",
	}
	w := PerformRequest(router, "POST", "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code)

	w = PerformRequest(router, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "cook@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w.Body.Bytes())["token"])

	w = PerformRequest(router, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "cook@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUserEndpoint(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, "POST", "/api/v1/users", "", map[string]interface{}{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w.Body.Bytes())
	assert.Equal(t, "cook", body["username"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")
}

func TestMeEndpoint(t *testing.T) {
	router, testDB := SetupTestRouter(t)
	userID, token := CreateTestUserAndToken(t, testDB)

	w := PerformRequest(router, "GET", "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w.Body.Bytes())
	assert.Equal(t, userID.String(), body["id"])

	w = PerformRequest(router, "GET", "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	router, testDB := SetupTestRouter(t)
	CreateTestUserAndToken(t, testDB)
	CreateTestUserAndToken(t, testDB)

	w := PerformRequest(router, "GET", "/api/v1/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w.Body.Bytes())
	assert.Equal(t, float64(2), body["count"])
	assert.Len(t, body["results"].([]interface{}), 2)
}

func TestSubscribeEndpoints(t *testing.T) {
	router, testDB := SetupTestRouter(t)
	readerID, readerToken := CreateTestUserAndToken(t, testDB)
	authorID, authorToken := CreateTestUserAndToken(t, testDB)
	tag := CreateTestTag(t, testDB, "Dinner", "dinner")
	salt := CreateTestIngredient(t, testDB, "Salt", "g")

	payload := createRecipePayload(tag, salt)
	payload["name"] = "Broth"
	w := PerformRequest(router, "POST", "/api/v1/recipes", authorToken, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("subscribe returns author with recipes", func(t *testing.T) {
		w := PerformRequest(router, "POST", "/api/v1/users/"+authorID.String()+"/subscribe", readerToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decodeBody(t, w.Body.Bytes())
		assert.Equal(t, authorID.String(), body["id"])
		assert.Equal(t, true, body["is_subscribed"])
		assert.Equal(t, float64(1), body["recipes_count"])
		assert.Len(t, body["recipes"].([]interface{}), 1)
	})

	t.Run("self subscribe is 400", func(t *testing.T) {
		w := PerformRequest(router, "POST", "/api/v1/users/"+readerID.String()+"/subscribe", readerToken, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w.Body.Bytes()), "following")
	})

	t.Run("duplicate subscribe is 400", func(t *testing.T) {
		w := PerformRequest(router, "POST", "/api/v1/users/"+authorID.String()+"/subscribe", readerToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("subscriptions listing", func(t *testing.T) {
		w := PerformRequest(router, "GET", "/api/v1/users/subscriptions?recipes_limit=1", readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w.Body.Bytes())
		assert.Equal(t, float64(1), body["count"])
		results := body["results"].([]interface{})
		require.Len(t, results, 1)
		sub := results[0].(map[string]interface{})
		assert.Equal(t, authorID.String(), sub["id"])
		assert.Len(t, sub["recipes"].([]interface{}), 1)
	})

	t.Run("author profile shows is_subscribed for the reader", func(t *testing.T) {
		w := PerformRequest(router, "GET", "/api/v1/users/"+authorID.String(), readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w.Body.Bytes())["is_subscribed"])

		// Anonymous callers always see false.
		w = PerformRequest(router, "GET", "/api/v1/users/"+authorID.String(), "", nil)
		assert.Equal(t, false, decodeBody(t, w.Body.Bytes())["is_subscribed"])
	})

	t.Run("unsubscribe", func(t *testing.T) {
		w := PerformRequest(router, "DELETE", "/api/v1/users/"+authorID.String()+"/subscribe", readerToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = PerformRequest(router, "DELETE", "/api/v1/users/"+authorID.String()+"/subscribe", readerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
