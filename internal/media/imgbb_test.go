package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestUploadSuccess(t *testing.T) {
	var gotKey, gotImage string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotImage = r.FormValue("image")
		w.Write([]byte(`{"data":{"url":"https://i.ibb.co/abc/pic.png"}}`))
	}))
	defer ts.Close()

	u := NewImgBBWithURL("test-key", ts.URL, time.Second)
	url, err := u.Upload(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://i.ibb.co/abc/pic.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key in query, got %q", gotKey)
	}
	if gotImage != "aGVsbG8=" {
		t.Fatalf("expected image form field, got %q", gotImage)
	}
}

func TestUploadRejectionNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid base64"}}`))
	}))
	defer ts.Close()

	u := NewImgBBWithURL("k", ts.URL, time.Second)
	_, err := u.Upload(context.Background(), "not base64")
	if err == nil {
		t.Fatal("expected error")
	}
	var upErr *UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UploadError, got %T", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("definitive rejection should not be retried, got %d calls", calls.Load())
	}
}

func TestUploadRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"url":"https://i.ibb.co/abc/pic.png"}}`))
	}))
	defer ts.Close()

	u := NewImgBBWithURL("k", ts.URL, time.Second)
	url, err := u.Upload(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url == "" {
		t.Fatal("expected url after retry")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls.Load())
	}
}

func TestUploadMissingURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer ts.Close()

	u := NewImgBBWithURL("k", ts.URL, time.Second)
	if _, err := u.Upload(context.Background(), "aGVsbG8="); err == nil {
		t.Fatal("expected error for response without url")
	}
}
