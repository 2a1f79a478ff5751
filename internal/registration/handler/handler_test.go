package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/registration/draft"
	"onboard/internal/registration/models"
	"onboard/internal/registration/service"
	"onboard/internal/registration/session"
)

type lookupFunc func(ctx context.Context, candidate string) (models.UsernameCheck, error)

func (f lookupFunc) CheckAvailability(ctx context.Context, candidate string) (models.UsernameCheck, error) {
	return f(ctx, candidate)
}

type registrarFunc func(ctx context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error)

func (f registrarFunc) Register(ctx context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error) {
	return f(ctx, req)
}

func newRouter(t *testing.T, lookup lookupFunc, registrar registrarFunc) http.Handler {
	t.Helper()
	if lookup == nil {
		lookup = func(_ context.Context, _ string) (models.UsernameCheck, error) {
			return models.UsernameCheck{Available: true, Suggestions: []string{}}, nil
		}
	}
	if registrar == nil {
		registrar = func(_ context.Context, _ models.AccountCreateRequest) (models.AccountCreateResult, error) {
			return models.AccountCreateResult{Success: true}, nil
		}
	}

	drafts, err := draft.New(draft.NewMemoryKV())
	require.NoError(t, err)
	pipeline, err := service.New(registrar, service.WithDraftStore(drafts))
	require.NoError(t, err)
	mgr := session.NewManager(drafts, lookup, pipeline,
		session.WithDebounceWindow(10*time.Millisecond),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	New(mgr, logger).Register(router)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/registration/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Session struct {
			ID   string `json:"id"`
			Step int    `json:"step"`
		} `json:"session"`
		Recovered bool `json:"recovered"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Session.ID)
	require.Equal(t, 1, resp.Session.Step)
	require.False(t, resp.Recovered)
	return resp.Session.ID
}

func validDraftBody() map[string]any {
	return map[string]any{
		"personalDetails": map[string]any{
			"username":    "mallory",
			"firstName":   "Mallory",
			"lastName":    "Moore",
			"gender":      "female",
			"dateOfBirth": "1992-02-02",
		},
		"communication": map[string]any{
			"email":        "mallory@example.com",
			"phoneNumbers": []string{"+44 20 7946 0958"},
		},
	}
}

func TestCreateAndGetSession(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/registration/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view session.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, id, view.ID)
	assert.Equal(t, 1, view.Step)
	assert.False(t, view.Submitted)
}

func TestGetUnknownSessionReturns404(t *testing.T) {
	router := newRouter(t, nil, nil)
	rec := doJSON(t, router, http.MethodGet, "/registration/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_not_found")
}

func TestUpdateDraftAndAdvance(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPut, "/registration/sessions/"+id+"/draft", validDraftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var step struct {
		Step     int  `json:"step"`
		Accepted bool `json:"accepted"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&step))
	assert.True(t, step.Accepted)
	assert.Equal(t, 2, step.Step)
}

func TestAdvanceRejectedOnEmptyForm(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var step struct {
		Step     int  `json:"step"`
		Accepted bool `json:"accepted"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&step))
	assert.False(t, step.Accepted)
	assert.Equal(t, 1, step.Step)
}

func TestRetreatFromFirstStepIsRejected(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/retreat", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var step struct {
		Step     int  `json:"step"`
		Accepted bool `json:"accepted"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&step))
	assert.False(t, step.Accepted)
	assert.Equal(t, 1, step.Step)
}

func TestUsernameCheckReturnsSuggestions(t *testing.T) {
	lookup := lookupFunc(func(_ context.Context, candidate string) (models.UsernameCheck, error) {
		if candidate == "bob" {
			return models.UsernameCheck{Available: false, Suggestions: []string{"bob123"}}, nil
		}
		return models.UsernameCheck{Available: true, Suggestions: []string{}}, nil
	})
	router := newRouter(t, lookup, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/username-check",
		map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.UsernameCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.False(t, res.Available)
	assert.Equal(t, []string{"bob123"}, res.Suggestions)
}

func TestPasswordStrengthVector(t *testing.T) {
	router := newRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/registration/password-strength",
		map[string]string{"password": "abc"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Rules  []bool `json:"rules"`
		Strong bool   `json:"strong"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, []bool{false, false, true, false, false}, res.Rules)
	assert.False(t, res.Strong)
}

func TestSubmitHappyPath(t *testing.T) {
	var got models.AccountCreateRequest
	registrar := registrarFunc(func(_ context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error) {
		got = req
		return models.AccountCreateResult{Success: true}, nil
	})
	router := newRouter(t, nil, registrar)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPut, "/registration/sessions/"+id+"/draft", validDraftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/submit",
		map[string]string{"password": "Ab1!aaaa", "confirmPassword": "Ab1!aaaa"})
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome models.SubmissionOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	assert.True(t, outcome.Success)
	assert.Nil(t, outcome.Failure)
	assert.Equal(t, "mallory", got.Username)
	assert.Equal(t, "mallory@example.com", got.Email)
}

func TestSubmitDuplicateCarriesRedirectHint(t *testing.T) {
	registrar := registrarFunc(func(_ context.Context, _ models.AccountCreateRequest) (models.AccountCreateResult, error) {
		return models.AccountCreateResult{}, &models.RemoteError{
			StatusCode: 409,
			Message:    "account already exists",
		}
	})
	router := newRouter(t, nil, registrar)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPut, "/registration/sessions/"+id+"/draft", validDraftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/submit",
		map[string]string{"password": "Ab1!aaaa", "confirmPassword": "Ab1!aaaa"})
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome models.SubmissionOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.ErrorDuplicateAccount, outcome.Failure.Kind)
	assert.Equal(t, models.HintLogin, outcome.Failure.RedirectHint)
}

func TestSubmitValidationFailureListsFields(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/registration/sessions/"+id+"/submit",
		map[string]string{"password": "weak", "confirmPassword": "other"})
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome models.SubmissionOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.ErrorValidation, outcome.Failure.Kind)
	assert.Contains(t, outcome.Failure.FieldErrors, "password")
	assert.Contains(t, outcome.Failure.FieldErrors, "confirmPassword")
	assert.Contains(t, outcome.Failure.FieldErrors, "username")
}

func TestDisposeSession(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/registration/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/registration/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/registration/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBodyRejected(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodPut, "/registration/sessions/"+id+"/draft",
		bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNonJSONContentTypeRejected(t *testing.T) {
	router := newRouter(t, nil, nil)
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodPut, "/registration/sessions/"+id+"/draft",
		bytes.NewReader([]byte("username=eve")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
