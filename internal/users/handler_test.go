package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/users"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	paths []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	return "https://cdn.test/" + path, nil
}

func withSession(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.ContextWithSession(r.Context(), &auth.Session{Token: "t", UserID: userID}))
}

func photoRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", "me.jpg")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withSession(req, "user-1")
}

func TestHandler_HandleGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockprofilesRepo(ctrl)
	h := users.NewHandler(repoMock, nil, &fakeUploader{}, 1<<20)

	repoMock.EXPECT().Get(gomock.Any(), "user-1").Return(&users.Profile{ID: "user-1", DisplayName: "Taro"}, nil).Times(1)
	repoMock.EXPECT().Get(gomock.Any(), "user-2").Return(nil, users.ErrProfileNotFound).Times(1)

	rr := httptest.NewRecorder()
	h.HandleGet(rr, withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), "user-1"))
	require.Equal(t, http.StatusOK, rr.Code)
	var profile users.Profile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "Taro", profile.DisplayName)

	rr = httptest.NewRecorder()
	h.HandleGet(rr, withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), "user-2"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleGet(rr, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_HandleUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockprofilesRepo(ctrl)
	accountsMock := NewMockaccountNamer(ctrl)
	h := users.NewHandler(repoMock, accountsMock, &fakeUploader{}, 1<<20)

	gomock.InOrder(
		repoMock.EXPECT().
			Update(gomock.Any(), "user-1", map[string]any{"displayName": "Hanako", "height": 160.5}).
			Return(nil),
		accountsMock.EXPECT().
			UpdateDisplayName(gomock.Any(), "user-1", "Hanako").
			Return(errors.New("db hiccup")),
		repoMock.EXPECT().
			Get(gomock.Any(), "user-1").
			Return(&users.Profile{ID: "user-1", DisplayName: "Hanako"}, nil),
	)

	req := withSession(httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"displayName":"Hanako","height":160.5}`)), "user-1")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleUpdate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"displayName":"Hanako"`)
}

func TestHandler_HandleUpdate_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := users.NewHandler(NewMockprofilesRepo(ctrl), nil, &fakeUploader{}, 1<<20)

	for _, body := range []string{`{"age":-1}`, `{}`, `not-json`} {
		req := withSession(httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)), "user-1")
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.HandleUpdate(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestHandler_HandleUploadPhoto(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockprofilesRepo(ctrl)
	uploader := &fakeUploader{}
	h := users.NewHandler(repoMock, nil, uploader, 1<<20)

	repoMock.EXPECT().
		UpdatePhotoURL(gomock.Any(), "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, url string) error {
			assert.True(t, strings.HasPrefix(url, "https://cdn.test/users/user-1/profile-"))
			return nil
		}).Times(1)

	rr := httptest.NewRecorder()
	h.HandleUploadPhoto(rr, photoRequest(t, []byte("jpeg")))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, uploader.paths, 1)
	assert.True(t, strings.HasSuffix(uploader.paths[0], ".jpg"))

	var resp users.PhotoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.test/"+uploader.paths[0], resp.PhotoURL)
}

func TestHandler_HandleUploadPhoto_UploadFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockprofilesRepo(ctrl)
	h := users.NewHandler(repoMock, nil, &fakeUploader{err: errors.New("bucket gone")}, 1<<20)

	rr := httptest.NewRecorder()
	h.HandleUploadPhoto(rr, photoRequest(t, []byte("jpeg")))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_HandleUploadPhoto_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := users.NewHandler(NewMockprofilesRepo(ctrl), nil, &fakeUploader{}, 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/profile/photo", strings.NewReader("x")), "user-1")
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	h.HandleUploadPhoto(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
