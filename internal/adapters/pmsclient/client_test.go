package pmsclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hotel_pms/internal/adapters/pmsclient"
	"hotel_pms/internal/domain"
)

func TestClient_ListReservations_RetriesThenSuccess(t *testing.T) {
	var hits int32
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(500)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(429)
		default:
			gotQuery = r.URL.RawQuery
			if r.URL.Path != "/v1/hotels/h1/reservations" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"reservations": []domain.Reservation{{ID: "r1", Status: domain.StatusPending}},
			})
		}
	}))
	defer ts.Close()

	cl, err := pmsclient.New(ts.URL, "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.ListReservations(ctx, "h1",
		[]domain.ReservationStatus{domain.StatusPending, domain.StatusConfirmed}, "2024-06-01")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if gotQuery != "checkInBefore=2024-06-01&status=pending%2Cconfirmed" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_MarkNoShow_Conflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"title":"Invalid State"}`))
	}))
	defer ts.Close()

	cl, err := pmsclient.New(ts.URL, "k", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = cl.MarkNoShow(context.Background(), "h1", "r1")
	if !errors.Is(err, pmsclient.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestClient_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := pmsclient.New(ts.URL, "k", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := cl.MarkNoShow(ctx, "h1", "missing"); !errors.Is(err, pmsclient.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_RejectsBadBase(t *testing.T) {
	if _, err := pmsclient.New("not a url", "", 1); err == nil {
		t.Fatal("expected error")
	}
}
