package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekapeak/peekctl/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.APIConfig{
		BaseURL:        server.URL,
		UploadsBaseURL: server.URL + "/uploads/",
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)
	return client, server
}

func TestUnauthorizedResponseFiresHookAndTypedError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
	}))

	fired := 0
	client.SetUnauthorizedHook(func() { fired++ })

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, fired, "a 401 fires the hook exactly once")

	var authErr *AuthorizationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "Not authenticated", authErr.Message)
	assert.True(t, IsUnauthorized(err))
}

func TestOpenUploadUnauthorizedFiresHook(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
	}))

	fired := 0
	client.SetUnauthorizedHook(func() { fired++ })

	_, _, err := client.OpenUpload(context.Background(), "summit.jpg")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, fired, "a 401 on the uploads path fires the hook too")
}

func TestValidationErrorCarriesFieldDetails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address","type":"value_error"}]}`)
	}))

	_, err := client.Register(context.Background(), UserCreate{})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Len(t, valErr.Fields, 1)
	assert.Equal(t, []string{"body", "email"}, valErr.Fields[0].Loc)
	assert.Equal(t, "value_error", valErr.Fields[0].Type)
}

func TestNotFoundIsTyped(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"User not found"}`)
	}))

	_, err := client.GetUser(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestLoginPostsFormThenResolvesUser(t *testing.T) {
	var loginForm map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		loginForm = map[string]string{
			"email_or_username": r.PostFormValue("email_or_username"),
			"password":          r.PostFormValue("password"),
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		require.NoError(t, err, "the follow-up call must carry the session cookie")
		assert.Equal(t, "abc", cookie.Value)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{ID: 1, Email: "ania@example.com", Username: "ania"})
	})

	client, _ := newTestClient(t, mux)

	user, err := client.Login(context.Background(), "ania", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "ania", user.Username)
	assert.Equal(t, map[string]string{"email_or_username": "ania", "password": "hunter2"}, loginForm)
}

func TestPhotosByUserEncodesQueryAndDerivesNextPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/ania/photos", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "capturedAt", q.Get("sortBy"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("perPage"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Page[SummitPhoto]{
			Total:   25,
			Page:    2,
			PerPage: 10,
			Items:   make([]SummitPhoto, 10),
		})
	})

	client, _ := newTestClient(t, mux)

	page, err := client.PhotosByUser(context.Background(), "ania", ListOptions{
		SortBy: "capturedAt", Order: "desc", Page: 2, PerPage: 10,
	})
	require.NoError(t, err)

	next, ok := page.NextPage()
	require.True(t, ok)
	assert.Equal(t, 3, next)
}

func TestPageNextPageAbsentOnLastPage(t *testing.T) {
	page := Page[SummitPhoto]{Total: 25, Page: 3, PerPage: 10, Items: make([]SummitPhoto, 5)}
	_, ok := page.NextPage()
	assert.False(t, ok)

	empty := Page[SummitPhoto]{Total: 0, Page: 1, PerPage: 10}
	_, ok = empty.NextPage()
	assert.False(t, ok)
}

func TestAllPhotosByUserWalksEveryPage(t *testing.T) {
	pagesServed := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/users/ania/photos", func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}

		items := make([]SummitPhoto, 0, 10)
		for i := 0; i < 10 && (page-1)*10+i < 23; i++ {
			items = append(items, SummitPhoto{ID: (page-1)*10 + i + 1})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Page[SummitPhoto]{Total: 23, Page: page, PerPage: 10, Items: items})
	})

	client, _ := newTestClient(t, mux)

	photos, err := client.AllPhotosByUser(context.Background(), "ania", ListOptions{PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, photos, 23)
	assert.Equal(t, 3, pagesServed)
}

func TestUploadPhotoSendsMultipartFileAndMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/photos", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "summit.jpg", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(content))

		var create SummitPhotoCreate
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("summitPhotoCreate")), &create))
		assert.Equal(t, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), create.CapturedAt.UTC())
		require.NotNil(t, create.PeakID)
		assert.Equal(t, 7, *create.PeakID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SummitPhoto{ID: 99, FileName: "summit.jpg"})
	})

	client, _ := newTestClient(t, mux)

	peakID := 7
	lat, lng := 49.2506, 19.9342
	photo, err := client.UploadPhoto(context.Background(),
		strings.NewReader("jpeg bytes"), "summit.jpg", SummitPhotoCreate{
			CapturedAt: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
			Lat:        &lat,
			Lng:        &lng,
			PeakID:     &peakID,
		})
	require.NoError(t, err)
	assert.Equal(t, 99, photo.ID)
}

func TestFindNearbyPeaksSortsDeterministically(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/peaks/find", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "49.2", q.Get("lat"))
		assert.Equal(t, "19.9", q.Get("lng"))
		assert.Equal(t, "8", q.Get("limit"))
		assert.Equal(t, "gie", q.Get("nameFilter"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]PeakCandidate{
			{Peak: Peak{ID: 2, Name: "Rysy"}, Distance: 200},
			{Peak: Peak{ID: 1, Name: "Giewont"}, Distance: 200},
			{Peak: Peak{ID: 3, Name: "Kasprowy Wierch"}, Distance: 50},
		})
	})

	client, _ := newTestClient(t, mux)

	candidates, err := client.FindNearbyPeaks(context.Background(), 49.2, 19.9, 8, "gie", 0)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "Kasprowy Wierch", candidates[0].Peak.Name)
	assert.Equal(t, "Giewont", candidates[1].Peak.Name, "equal distances break ties by name")
	assert.Equal(t, "Rysy", candidates[2].Peak.Name)
}

func TestDeletePhoto(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeletePhoto(context.Background(), 42))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/photos/42", path)
}
