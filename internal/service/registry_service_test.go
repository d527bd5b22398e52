package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestICOFromDIC(t *testing.T) {
	tests := []struct {
		dic  string
		want string
	}{
		{"2023456789", "23456789"},
		{"2020123456", "20123456"},
		{"12345678", "12345678"},
		{"SK2023456789", "23456789"},
		{"123456789", "12345678"},
		{"1234567", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ICOFromDIC(tt.dic); got != tt.want {
			t.Errorf("ICOFromDIC(%q) = %q, want %q", tt.dic, got, tt.want)
		}
	}
}

func TestLookupRUZ(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uctovne-jednotky":
			if r.URL.Query().Get("ico") != "34567890" {
				t.Errorf("unexpected ico %q", r.URL.Query().Get("ico"))
			}
			w.Write([]byte(`{"id":[4711]}`))
		case "/uctovna-jednotka":
			if r.URL.Query().Get("id") != "4711" {
				t.Errorf("unexpected id %q", r.URL.Query().Get("id"))
			}
			w.Write([]byte(`{"dic":"2023456789","nazovUJ":"Doprava Test s.r.o.","ulica":"Hlavná 12/A","psc":"81101","mesto":"Bratislava"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewRegistryService(srv.URL, srv.URL, 2*time.Second, nil, time.Hour)
	rec, err := s.LookupRUZ(context.Background(), "34567890")
	if err != nil {
		t.Fatalf("LookupRUZ: %v", err)
	}

	if rec.Name != "Doprava Test s.r.o." {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Street != "Hlavná" || rec.HouseNumber != "12/A" {
		t.Errorf("street split = %q %q, want Hlavná 12/A", rec.Street, rec.HouseNumber)
	}
	if rec.DIC != "2023456789" || rec.City != "Bratislava" || rec.PostalCode != "81101" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Country != "Slovenská republika" {
		t.Errorf("country = %q", rec.Country)
	}
}

func TestLookupRUZNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":[]}`))
	}))
	defer srv.Close()

	s := NewRegistryService(srv.URL, srv.URL, 2*time.Second, nil, time.Hour)
	if _, err := s.LookupRUZ(context.Background(), "99999999"); err != ErrRegistryNotFound {
		t.Fatalf("err = %v, want ErrRegistryNotFound", err)
	}
}

func TestLookupRPO(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`[{"id":815}]`))
		case "/organizations/815":
			w.Write([]byte(`{
				"names":[{"value":"Stará firma a.s.","effectiveTo":"2020-01-01"},{"value":"Nová firma a.s.","effectiveTo":null}],
				"addresses":[{"streetName":"Dlhá","regNumber":"5","postalCode":"04001","municipality":"Košice","effectiveTo":null}],
				"identifiers":[{"type":"ICO","value":"34567890"},{"type":"DIC","value":"2023456789"}]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewRegistryService(srv.URL, srv.URL, 2*time.Second, nil, time.Hour)
	rec, err := s.LookupRPO(context.Background(), "34567890")
	if err != nil {
		t.Fatalf("LookupRPO: %v", err)
	}

	if rec.Name != "Nová firma a.s." {
		t.Errorf("name = %q, want current name", rec.Name)
	}
	if rec.Street != "Dlhá" || rec.HouseNumber != "5" || rec.City != "Košice" {
		t.Errorf("address = %+v", rec)
	}
	if rec.DIC != "2023456789" {
		t.Errorf("dic = %q", rec.DIC)
	}
}

func TestVerifyPrefersRUZ(t *testing.T) {
	ruzCalled := false
	ruz := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ruzCalled = true
		switch r.URL.Path {
		case "/uctovne-jednotky":
			w.Write([]byte(`{"id":[1]}`))
		default:
			w.Write([]byte(`{"dic":"2023456789","nazovUJ":"Firma","ulica":"Krátka 1","psc":"81101","mesto":"Bratislava"}`))
		}
	}))
	defer ruz.Close()

	rpo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("RPO must not be queried when RUZ succeeds")
	}))
	defer rpo.Close()

	s := NewRegistryService(rpo.URL, ruz.URL, 2*time.Second, nil, time.Hour)
	rec, err := s.Verify(context.Background(), "2023456789")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ruzCalled || rec.Name != "Firma" {
		t.Fatalf("rec = %+v, ruzCalled = %v", rec, ruzCalled)
	}
}

func TestVerifyFallsBackToRPO(t *testing.T) {
	ruz := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":[]}`))
	}))
	defer ruz.Close()

	rpo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"organizations":[{"id":7}]}`))
		default:
			w.Write([]byte(`{"name":"Fallback s.r.o.","addresses":[],"identifiers":[]}`))
		}
	}))
	defer rpo.Close()

	s := NewRegistryService(rpo.URL, ruz.URL, 2*time.Second, nil, time.Hour)
	rec, err := s.Verify(context.Background(), "2023456789")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec.Name != "Fallback s.r.o." {
		t.Fatalf("name = %q", rec.Name)
	}
}

func TestVerifyBadDIC(t *testing.T) {
	s := NewRegistryService("http://127.0.0.1:0", "http://127.0.0.1:0", time.Second, nil, time.Hour)
	if _, err := s.Verify(context.Background(), "abc"); err == nil {
		t.Fatal("expected error for underivable ICO")
	}
}
