package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func uploadRequest(t *testing.T, principal, kind, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if kind != "" {
		if err := writer.WriteField("kind", kind); err != nil {
			t.Fatalf("write kind field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if principal != "" {
		req.Header.Set("Authorization", "Bearer "+principal)
	}
	return req
}

func TestUploadStoresBlobUnderPrincipalKey(t *testing.T) {
	env := newTestEnv(t)

	req := uploadRequest(t, "alice", "avatar", "me.png", []byte("png bytes"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d (%s)", http.StatusCreated, rec.Code, rec.Body)
	}
	url := decodeBody[map[string]string](t, rec)["url"]
	if !strings.HasPrefix(url, "https://cdn.test/avatar/alice/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected blob url %q", url)
	}

	if len(env.blobs.saved) != 1 {
		t.Fatalf("expected one stored blob got %d", len(env.blobs.saved))
	}
}

func TestUploadDefaultsToVideoKind(t *testing.T) {
	env := newTestEnv(t)

	req := uploadRequest(t, "alice", "", "clip.mp4", []byte("mp4 bytes"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}
	if url := decodeBody[map[string]string](t, rec)["url"]; !strings.HasPrefix(url, "https://cdn.test/video/alice/") {
		t.Fatalf("unexpected blob url %q", url)
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)

	req := uploadRequest(t, "alice", "document", "a.pdf", []byte("pdf"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d got %d", http.StatusUnprocessableEntity, rec.Code)
	}
}

func TestUploadRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	req := uploadRequest(t, "", "video", "clip.mp4", []byte("mp4"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUploadWithoutFileField(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", strings.NewReader("not multipart"))
	req.Header.Set("Authorization", "Bearer alice")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
