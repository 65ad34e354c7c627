package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/filmorate/backend/internal/models"
)

type stubFriendService struct {
	friends map[int64][]models.User
	asked   []int64
}

func (s *stubFriendService) RequestFriendship(context.Context, int64, int64) (models.User, error) {
	return models.User{}, nil
}

func (s *stubFriendService) DissolveFriendship(context.Context, int64, int64) (models.User, error) {
	return models.User{}, nil
}

func (s *stubFriendService) FriendsOf(_ context.Context, userID int64) ([]models.User, error) {
	s.asked = append(s.asked, userID)
	friends, ok := s.friends[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return friends, nil
}

func (s *stubFriendService) CommonFriends(context.Context, int64, int64) ([]models.User, error) {
	return nil, nil
}

func TestUserHandlerListFriends(t *testing.T) {
	svc := &stubFriendService{friends: map[int64][]models.User{
		7: {{ID: 3, Login: "carol"}},
	}}
	r := chi.NewRouter()
	r.Get("/users/{id}/friends", UserHandler{Friends: svc}.ListFriends)

	req := httptest.NewRequest(http.MethodGet, "/users/7/friends", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got []models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("unexpected friends %+v", got)
	}
	if len(svc.asked) != 1 || svc.asked[0] != 7 {
		t.Fatalf("expected lookup for user 7, got %v", svc.asked)
	}

	for path, want := range map[string]int{
		"/users/8/friends":   http.StatusNotFound,
		"/users/abc/friends": http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}
}
