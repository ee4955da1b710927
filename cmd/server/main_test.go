package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoserver/internal/config"
	"todoserver/internal/models"
)

// newTestServer поднимает сервер с файловым бэкендом во временном каталоге.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Backend = config.BackendFile
	cfg.Storage.DataDir = t.TempDir()
	require.NoError(t, cfg.Validate())

	deps, err := setupDependencies(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(setupRouter(deps))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON выполняет запрос с JSON-телом и разбирает JSON-ответ в out.
func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestServer_FullScenario прогоняет полный жизненный цикл пользователя:
// регистрация, вход, работа со списком задач.
func TestServer_FullScenario(t *testing.T) {
	srv := newTestServer(t)

	// Регистрация
	var reg models.AuthResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
		"username": "Alice",
	}, &reg)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, reg.Success)
	assert.Equal(t, "1", reg.UserID)
	assert.Equal(t, "Alice", reg.Username)
	assert.NotEmpty(t, reg.SessionToken)

	// Повторная регистрация с тем же email отклоняется
	var dup models.MessageResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "other",
		"username": "Mallory",
	}, &dup)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, dup.Success)

	// Вход выдает новый токен
	var login models.AuthResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.SessionToken)
	assert.NotEqual(t, reg.SessionToken, login.SessionToken)
	token := login.SessionToken

	// Без токена список задач недоступен
	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Создание задачи
	var created models.TaskResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/tasks", token, map[string]string{
		"title": "Купить молоко",
	}, &created)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, created.Task)
	assert.NotEmpty(t, created.TaskID)
	assert.Equal(t, models.DefaultCategory, created.Task.Category)
	assert.False(t, created.Task.Completed)
	assert.Equal(t, created.Task.CreatedAt, created.Task.UpdatedAt)

	// Список содержит созданную задачу
	var list models.TaskListResponse
	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Купить молоко", list.Tasks[0].Title)

	// Частичное обновление меняет только completed
	var updated models.TaskResponse
	status = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/"+created.TaskID, token, map[string]bool{
		"completed": true,
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, updated.Task)
	assert.True(t, updated.Task.Completed)
	assert.Equal(t, "Купить молоко", updated.Task.Title)

	// Удаление
	status = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.TaskID, token, nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, list.Count)
}

// TestServer_TaskIsolation проверяет, что чужие задачи недоступны.
func TestServer_TaskIsolation(t *testing.T) {
	srv := newTestServer(t)

	registerUser := func(email, username string) string {
		var reg models.AuthResponse
		status := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
			"email":    email,
			"password": "pw-" + username,
			"username": username,
		}, &reg)
		require.Equal(t, http.StatusOK, status)
		require.NotEmpty(t, reg.SessionToken)
		return reg.SessionToken
	}

	aliceToken := registerUser("alice@example.com", "Alice")
	bobToken := registerUser("bob@example.com", "Bob")

	var created models.TaskResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", aliceToken, map[string]string{
		"title": "Задача Алисы",
	}, &created)
	require.Equal(t, http.StatusOK, status)

	// Боб не видит задачу Алисы в своем списке
	var list models.TaskListResponse
	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", bobToken, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, list.Count)

	// Обновление и удаление чужой задачи запрещены
	status = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/"+created.TaskID, bobToken, map[string]bool{
		"completed": true,
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.TaskID, bobToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Задача Алисы не тронута
	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", aliceToken, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.False(t, list.Tasks[0].Completed)
}

// TestServer_SystemEndpoints проверяет сервисные маршруты.
func TestServer_SystemEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var home map[string]any
	status := doJSON(t, http.MethodGet, srv.URL+"/", "", nil, &home)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "running", home["status"])
	assert.Equal(t, config.BackendFile, home["storage"])

	var health map[string]any
	status = doJSON(t, http.MethodGet, srv.URL+"/health", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", health["status"])

	var debug map[string]any
	status = doJSON(t, http.MethodGet, srv.URL+"/api/debug", "", nil, &debug)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), debug["total_users"])
}

// TestServer_InvalidSession проверяет отказ по устаревшему токену.
func TestServer_InvalidSession(t *testing.T) {
	srv := newTestServer(t)

	var reg models.AuthResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"email":    "carol@example.com",
		"password": "pw",
		"username": "Carol",
	}, &reg)
	require.Equal(t, http.StatusOK, status)
	oldToken := reg.SessionToken

	// Повторный вход перевыпускает токен, старый перестает действовать
	var login models.AuthResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    "carol@example.com",
		"password": "pw",
	}, &login)
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", oldToken, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", login.SessionToken, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}
